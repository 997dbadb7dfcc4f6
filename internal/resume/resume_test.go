package resume

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assist/internal/domain"
	"assist/internal/pdf"
)

type stubGenerator struct {
	reply  string
	err    error
	prompt string
	calls  int
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompt = prompt
	return g.reply, g.err
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    []byte
		want    Kind
		wantErr bool
	}{
		{name: "pdf magic", file: "upload", data: []byte("%PDF-1.4\n%âãÏÓ\n"), want: KindPDF},
		{name: "pdf extension", file: "cv.PDF", data: []byte{0x00, 0x01}, want: KindPDF},
		{name: "plain text", file: "cv", data: []byte("Skills: Go, SQL"), want: KindText},
		{name: "txt with bad bytes", file: "cv.txt", data: []byte{0xff, 0xfe, 0x00, 0x41}, want: KindText},
		{name: "png", file: "photo.png", data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectKind(tt.file, tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractText_PlainText(t *testing.T) {
	text, err := ExtractText(context.Background(), "cv.txt", []byte("Go developer\xffwith SQL"))
	require.NoError(t, err)
	assert.Equal(t, "Go developer�with SQL", text)
}

func TestExtractText_Empty(t *testing.T) {
	text, err := ExtractText(context.Background(), "cv.pdf", nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractText_PDF(t *testing.T) {
	data, err := pdf.Render("Jane Doe\nSkills Kubernetes Terraform")
	require.NoError(t, err)

	text, err := ExtractText(context.Background(), "cv.pdf", data)
	require.NoError(t, err)
	assert.Contains(t, text, "Kubernetes")
}

func TestExtractText_CorruptPDF(t *testing.T) {
	_, err := ExtractText(context.Background(), "cv.pdf", []byte("%PDF-1.4 truncated"))
	assert.Error(t, err)
}

func TestParse_Valid(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n{\"skills\":[\"Go\"],\"experience\":[\"Acme\"],\"education\":[\"BSc\"]}\n```"}

	got := Parse(context.Background(), gen, "résumé body")
	assert.Equal(t, []string{"Go"}, got.Skills)
	assert.Equal(t, []string{"Acme"}, got.Experience)
	assert.Equal(t, []string{}, got.Achievements)
	assert.Equal(t, []string{}, got.Projects)
	assert.True(t, strings.Contains(gen.prompt, "résumé body"))
}

func TestParse_NullCategoryKeepsOthers(t *testing.T) {
	gen := &stubGenerator{reply: `{"skills":["Go","SQL"],"experience":["Acme"],"achievements":null,"education":null,"projects":[]}`}

	got := Parse(context.Background(), gen, "résumé body")
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)
	assert.Equal(t, []string{"Acme"}, got.Experience)
	assert.Equal(t, []string{}, got.Achievements)
	assert.Equal(t, []string{}, got.Education)
	assert.Equal(t, []string{}, got.Projects)
}

func TestParse_FallsBack(t *testing.T) {
	tests := map[string]*stubGenerator{
		"non-json":        {reply: "I could not find a résumé."},
		"wrong shape":     {reply: `{"skills":"Go"}`},
		"transport error": {err: errors.New("connection reset")},
	}
	for name, gen := range tests {
		t.Run(name, func(t *testing.T) {
			got := Parse(context.Background(), gen, "some text")
			assert.Equal(t, domain.EmptyResume(), got)
		})
	}
}

func TestParse_BlankTextSkipsModel(t *testing.T) {
	gen := &stubGenerator{reply: `{"skills":["Go"]}`}
	got := Parse(context.Background(), gen, "  \n ")
	assert.Equal(t, domain.EmptyResume(), got)
	assert.Zero(t, gen.calls)
}
