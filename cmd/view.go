// =============================================================================
// Invoice Email Generator - View Command
// =============================================================================
//
// This file defines the 'view' command: a terminal inspector for generated
// .eml files. It prints the header block, lists every MIME part, and dumps
// the decoded HTML body, enough to spot-check a batch without opening a
// mail client.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// viewCmd represents the 'view' command.
var viewCmd = &cobra.Command{
	Use:   "view <file.eml>",
	Short: "Inspect a generated .eml file in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runView(args[0])
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	msg, err := mail.ReadMessage(f)
	if err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}

	fmt.Println("=== Headers ===")
	for _, key := range []string{"From", "To", "Cc", "Bcc", "Subject", "Date"} {
		if v := msg.Header.Get(key); v != "" {
			decoded, err := new(mime.WordDecoder).DecodeHeader(v)
			if err != nil {
				decoded = v
			}
			fmt.Printf("%-8s %s\n", key+":", decoded)
		}
	}

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		fmt.Println("\n(not a multipart message)")
		return nil
	}

	mr := multipart.NewReader(msg.Body, params["boundary"])
	partNum := 0
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read part: %w", err)
		}
		partNum++

		ct := part.Header.Get("Content-Type")
		if filename := part.FileName(); filename != "" {
			fmt.Printf("\n=== Part %d: attachment %s (%s) ===\n", partNum, filename, ct)
			continue
		}

		fmt.Printf("\n=== Part %d: %s ===\n", partNum, ct)
		var body io.Reader = part
		if strings.EqualFold(part.Header.Get("Content-Transfer-Encoding"), "quoted-printable") {
			body = quotedprintable.NewReader(part)
		}
		data, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("failed to decode part: %w", err)
		}
		fmt.Println(string(data))
	}

	return nil
}
