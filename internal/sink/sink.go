// =============================================================================
// Invoice Email Generator - Output Sinks
// =============================================================================
//
// A sink persists a finished message artifact and returns a stable
// identifier for the generation report. The assembler never knows where its
// bytes end up; format and destination are decided here, at the boundary.
//
// Implementations:
//   - EMLSink:    writes .eml files into the output directory
//   - BufferSink: keeps artifacts in memory (dry runs and tests)
//
// The proprietary .msg format needs Outlook automation, which only exists
// on Windows. Select degrades a "msg"/"auto" request to EML with a logged
// warning instead of failing the run.
//
// =============================================================================

package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/hamzanabiel/emailcreator/internal/assembler"
	"github.com/hamzanabiel/emailcreator/internal/types"
	"github.com/hamzanabiel/emailcreator/pkg/utils"
)

// Sink persists one artifact under a suggested base name (no extension)
// and returns the identifier recorded in the generation result.
type Sink interface {
	Write(artifact *assembler.Artifact, baseName string) (string, error)

	// Extension is the file extension this sink produces, shown in logs.
	Extension() string
}

// Select picks the sink for the configured format ("eml", "msg", "auto").
// MSG output would require Outlook COM automation; anywhere that is not
// available the selection degrades to EML, mirroring what the operator
// would get from a failed Outlook dispatch.
func Select(format, outputDir string, log *logrus.Logger) Sink {
	wantMsg := format == "msg" || (format == "auto" && runtime.GOOS == "windows")
	if wantMsg {
		log.Warn("MSG output requires Outlook automation, which is not available; falling back to EML")
	}
	return &EMLSink{Dir: outputDir}
}

// =============================================================================
// EML SINK
// =============================================================================

// EMLSink writes artifacts as .eml files.
type EMLSink struct {
	// Dir is the output directory, created on first write.
	Dir string
}

// Write persists the artifact as <baseName>.eml inside Dir. An on-disk name
// collision (a sibling unit or an earlier run) is resolved by bumping an
// index suffix rather than overwriting.
func (s *EMLSink) Write(artifact *assembler.Artifact, baseName string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrWrite, err)
	}

	path := utils.UniquePath(filepath.Join(s.Dir, baseName+".eml"))
	if err := os.WriteFile(path, artifact.Data, 0644); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrWrite, err)
	}
	return path, nil
}

// Extension returns ".eml".
func (s *EMLSink) Extension() string { return ".eml" }

// =============================================================================
// BUFFER SINK
// =============================================================================

// BufferSink keeps artifacts in memory. Dry runs use it so the whole
// pipeline, including assembly, executes without touching the output
// directory; tests use it to inspect artifacts.
type BufferSink struct {
	// Artifacts maps the returned identifier to the artifact bytes, in
	// write order via Names.
	Artifacts map[string][]byte
	Names     []string
}

// NewBufferSink creates an empty in-memory sink.
func NewBufferSink() *BufferSink {
	return &BufferSink{Artifacts: make(map[string][]byte)}
}

// Write stores the artifact under <baseName>.eml, bumping an index on
// collision like the filesystem sink does.
func (s *BufferSink) Write(artifact *assembler.Artifact, baseName string) (string, error) {
	name := baseName + ".eml"
	if _, exists := s.Artifacts[name]; exists {
		for i := 1; ; i++ {
			candidate := fmt.Sprintf("%s_%d.eml", baseName, i)
			if _, taken := s.Artifacts[candidate]; !taken {
				name = candidate
				break
			}
		}
	}
	s.Artifacts[name] = artifact.Data
	s.Names = append(s.Names, name)
	return name, nil
}

// Extension returns ".eml".
func (s *BufferSink) Extension() string { return ".eml" }
