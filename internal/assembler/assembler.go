// =============================================================================
// Invoice Email Generator - Message Assembler
// =============================================================================
//
// The assembler serializes one email unit plus its rendered content into a
// standards-compliant message container (RFC 5322 headers, multipart/mixed
// MIME body): a header block, one HTML body part, and one base64 attachment
// part per resolved attachment.
//
// The assembler is storage-agnostic: it produces bytes, and a sink decides
// where they go. It also does not re-validate addresses; that happened in
// the validation stage.
//
// =============================================================================

package assembler

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hamzanabiel/emailcreator/internal/types"
	"github.com/hamzanabiel/emailcreator/internal/validation"
)

// Artifact is a serialized message ready for a sink.
type Artifact struct {
	// Subject is carried along for logging and filename composition.
	Subject string

	// Data is the complete RFC 5322 message.
	Data []byte
}

// Assembler builds message artifacts.
type Assembler struct {
	// from is the sender placed in the From header.
	from string

	// separators are the multi-address separator characters; address
	// fields are re-joined with ", " per the message-format convention.
	separators string

	// now is swappable for tests; it feeds the Date header.
	now func() time.Time
}

// New creates an Assembler.
func New(from, separators string) *Assembler {
	return &Assembler{from: from, separators: separators, now: time.Now}
}

// Assemble serializes the unit with the given rendered subject and body.
// Attachment files are read here; a file that disappeared since validation
// yields an assembly error for this unit only.
func (a *Assembler) Assemble(unit *types.EmailUnit, renderedSubject, renderedBody string) (*Artifact, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	a.writeHeaders(&buf, unit, renderedSubject, mw.Boundary())

	if err := writeHTMLPart(mw, renderedBody); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrAssembly, err)
	}

	for i, att := range unit.Attachments {
		name := disambiguate(unit.Attachments, i)
		if err := writeAttachmentPart(mw, att.Path, name); err != nil {
			return nil, fmt.Errorf("%w: attachment %s: %v", types.ErrAssembly, att.Filename, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrAssembly, err)
	}

	return &Artifact{Subject: renderedSubject, Data: buf.Bytes()}, nil
}

// writeHeaders emits the top-level header block. Address fields are
// comma-joined; Cc and Bcc are only present when non-empty. Bcc is kept in
// the artifact deliberately: these are draft files an operator opens in a
// mail client, not messages already in transit.
func (a *Assembler) writeHeaders(buf *bytes.Buffer, unit *types.EmailUnit, subject, boundary string) {
	write := func(key, value string) {
		fmt.Fprintf(buf, "%s: %s\r\n", key, value)
	}

	write("From", a.from)
	write("To", a.joinAddresses(unit.To))
	if unit.Cc != "" {
		write("Cc", a.joinAddresses(unit.Cc))
	}
	if unit.Bcc != "" {
		write("Bcc", a.joinAddresses(unit.Bcc))
	}
	write("Subject", mime.QEncoding.Encode("utf-8", subject))
	write("Date", a.now().Format(time.RFC1123Z))
	write("Message-ID", fmt.Sprintf("<%s@emailcreator.local>", uuid.New().String()))
	write("MIME-Version", "1.0")
	write("Content-Type", fmt.Sprintf(`multipart/mixed; boundary=%q`, boundary))
	buf.WriteString("\r\n")
}

// joinAddresses normalizes an address field to the comma-joined form.
func (a *Assembler) joinAddresses(raw string) string {
	return strings.Join(validation.SplitAddresses(raw, a.separators), ", ")
}

// writeHTMLPart writes the quoted-printable HTML body part.
func writeHTMLPart(mw *multipart.Writer, body string) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", `text/html; charset="utf-8"`)
	header.Set("Content-Transfer-Encoding", "quoted-printable")

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}

	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

// writeAttachmentPart writes one base64 attachment part. The MIME type is
// inferred from the file extension, falling back to octet-stream.
func writeAttachmentPart(mw *multipart.Writer, path, filename string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Type", fmt.Sprintf("%s; name=%q", contentType, filename))
	header.Set("Content-Transfer-Encoding", "base64")
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}

	return writeBase64(part, data)
}

// writeBase64 writes base64 content wrapped at 76 columns per RFC 2045.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := fmt.Fprintf(w, "%s\r\n", encoded[:n]); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

// disambiguate returns the part filename for attachment i. Within one unit
// the first occurrence of a name stays unsuffixed; later occurrences get an
// index before the extension ("statement.pdf" → "statement_1.pdf").
func disambiguate(attachments []types.Attachment, i int) string {
	name := attachments[i].Filename
	seen := 0
	for j := 0; j < i; j++ {
		if attachments[j].Filename == name {
			seen++
		}
	}
	if seen == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), seen, ext)
}
