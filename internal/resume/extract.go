// Package resume turns an uploaded résumé into plain text and then into
// the structured categories used for letter writing and scoring.
package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/gabriel-vasile/mimetype"

	"assist/internal/logger"
)

// ErrUnsupportedFormat is returned for uploads that are neither PDF nor text.
var ErrUnsupportedFormat = errors.New("unsupported résumé format: upload a PDF or text file")

// Kind is the detected file kind of an upload.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindText Kind = "text"
)

// DetectKind sniffs the content first and falls back to the file extension.
func DetectKind(name string, data []byte) (Kind, error) {
	mime := mimetype.Detect(data)
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case mime.Is("application/pdf"), ext == ".pdf":
		return KindPDF, nil
	case strings.HasPrefix(mime.String(), "text/"), ext == ".txt", ext == ".md":
		return KindText, nil
	}
	return "", fmt.Errorf("%w (detected %s)", ErrUnsupportedFormat, mime.String())
}

// ExtractText returns the text of an uploaded résumé. PDF pages are
// concatenated in order; text files are decoded as UTF-8 with invalid bytes
// replaced. Empty input yields "".
func ExtractText(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	kind, err := DetectKind(name, data)
	if err != nil {
		return "", err
	}
	logger.Debug().Str("file", name).Str("kind", string(kind)).Int("bytes", len(data)).Msg("extracting résumé text")

	if kind == KindText {
		return strings.ToValidUTF8(string(data), "�"), nil
	}
	return extractPDF(ctx, name, data)
}

func extractPDF(ctx context.Context, name string, data []byte) (string, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return "", fmt.Errorf("create PDF parser: %w", err)
	}

	docs, err := p.Parse(ctx, bytes.NewReader(data), einoParser.WithURI(name))
	if err != nil {
		return "", fmt.Errorf("parse PDF %s: %w", name, err)
	}

	var sb strings.Builder
	for _, doc := range docs {
		// pages without a text layer come back empty
		sb.WriteString(doc.Content)
	}
	return sb.String(), nil
}
