// Package pdf renders a plain-text letter onto a single US Letter page.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Layout in points. The first baseline sits 750pt above the bottom edge.
const (
	FontFamily  = "Times"
	FontSize    = 12.0
	LeftMargin  = 40.0
	TopBaseline = 42.0
	Leading     = FontSize * 1.2
)

// Render writes one input line per PDF line. Lines are neither wrapped nor
// paginated, so long letters run off the page. Characters outside the
// cp1252 code page are replaced by the translator.
func Render(text string) ([]byte, error) {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetCompression(true)
	doc.AddPage()
	doc.SetFont(FontFamily, "", FontSize)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, line := range strings.Split(text, "\n") {
		line = strings.ReplaceAll(line, "\t", "    ")
		doc.Text(LeftMargin, TopBaseline+float64(i)*Leading, tr(line))
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
