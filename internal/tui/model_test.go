package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assist/internal/domain"
	"assist/internal/service"
	"assist/internal/transcript"
)

type fakeVideo struct {
	summary string
	quiz    domain.Quiz
	err     error
	calls   int
	lastN   int
}

func (f *fakeVideo) Summarize(context.Context, string) (*service.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &service.Result{Task: domain.TaskSummarize, Summary: f.summary, Chunks: 1}, nil
}

func (f *fakeVideo) Quiz(_ context.Context, _ string, n int) (*service.Result, error) {
	f.calls++
	f.lastN = n
	if f.err != nil {
		return nil, f.err
	}
	return &service.Result{Task: domain.TaskQuiz, Quiz: f.quiz}, nil
}

type fakeLetter struct {
	req service.LetterRequest
}

func (f *fakeLetter) Generate(_ context.Context, req service.LetterRequest) (*service.LetterResult, error) {
	f.req = req
	return &service.LetterResult{
		Letter: "Dear team,\nHire me.",
		Score:  domain.ScoreResult{Score: 50, Matched: []string{"Go"}, Missing: []string{"Rust"}, Keywords: []string{"Go", "Rust"}},
	}, nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+q":
		return tea.KeyMsg{Type: tea.KeyCtrlQ}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(v VideoPort, l LetterPort, pdfPath string) Model {
	m := New(context.Background(), v, l, pdfPath)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func typeInto(t *testing.T, m Model, text string) Model {
	t.Helper()
	next, _ := m.Update(key(text))
	return next.(Model)
}

// runCmd executes cmd and returns the first message of the wanted kind,
// unwrapping batches.
func runCmd[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if found, ok := c().(T); ok {
				return found
			}
		}
		t.Fatalf("no %T in batch", *new(T))
	}
	found, ok := msg.(T)
	require.True(t, ok, "unexpected message %T", msg)
	return found
}

func TestSummarizeFlow(t *testing.T) {
	video := &fakeVideo{summary: "Key ideas of the lecture."}
	m := newModel(video, &fakeLetter{}, "")
	m = typeInto(t, m, "https://youtu.be/abc123")

	next, cmd := m.Update(key("ctrl+s"))
	m = next.(Model)
	assert.True(t, m.busy)

	// a second run is refused while busy
	next, again := m.Update(key("ctrl+s"))
	assert.Nil(t, again)
	assert.Contains(t, next.(Model).status, "already in progress")

	done := runCmd[videoDoneMsg](t, cmd)
	next, _ = m.Update(done)
	m = next.(Model)
	assert.False(t, m.busy)
	assert.Contains(t, m.content, "Key ideas of the lecture.")
	assert.Equal(t, 1, video.calls)
}

func TestQuizFlow(t *testing.T) {
	video := &fakeVideo{quiz: domain.Quiz{Questions: []domain.QuizQuestion{
		{Question: "What is 2+2?", Choices: []string{"3", "4", "5", "6"}, Answer: "B"},
	}}}
	m := newModel(video, &fakeLetter{}, "")
	m = typeInto(t, m, "https://youtu.be/abc123")

	next, cmd := m.Update(key("ctrl+q"))
	m = next.(Model)
	done := runCmd[videoDoneMsg](t, cmd)
	next, _ = m.Update(done)
	m = next.(Model)

	assert.Equal(t, service.DefaultQuestions, video.lastN)
	assert.Contains(t, m.content, "1. What is 2+2?")
	assert.Contains(t, m.content, "B. 4")
	assert.Contains(t, m.content, "Answer: B")
}

func TestQuizCountValidation(t *testing.T) {
	video := &fakeVideo{}
	m := newModel(video, &fakeLetter{}, "")
	m = typeInto(t, m, "https://youtu.be/abc123")
	m.count.SetValue("40")

	next, cmd := m.Update(key("ctrl+q"))
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.True(t, m.isErr)
	assert.False(t, m.busy)
	assert.Zero(t, video.calls)
}

func TestEmptyURL(t *testing.T) {
	m := newModel(&fakeVideo{}, &fakeLetter{}, "")
	next, cmd := m.Update(key("ctrl+s"))
	assert.Nil(t, cmd)
	assert.Equal(t, "Please enter a YouTube URL.", next.(Model).status)
}

func TestErrorShowsHint(t *testing.T) {
	m := newModel(&fakeVideo{err: transcript.ErrNoTranscript}, &fakeLetter{}, "")
	m = typeInto(t, m, "https://youtu.be/abc123")
	next, cmd := m.Update(key("ctrl+s"))
	done := runCmd[videoDoneMsg](t, cmd)
	next, _ = next.(Model).Update(done)
	m = next.(Model)
	assert.True(t, m.isErr)
	assert.Contains(t, m.status, "no transcript")

	next, cmd = m.Update(videoDoneMsg{task: domain.TaskSummarize, err: errors.New("boom")})
	assert.Nil(t, cmd)
	assert.Contains(t, next.(Model).status, "This video may not have a transcript.")
}

func TestLetterFlowAndPDF(t *testing.T) {
	dir := t.TempDir()
	resumePath := filepath.Join(dir, "cv.txt")
	require.NoError(t, os.WriteFile(resumePath, []byte("Go developer"), 0o644))
	pdfPath := filepath.Join(dir, "letter.pdf")

	letter := &fakeLetter{}
	m := newModel(&fakeVideo{}, letter, pdfPath)
	next, _ := m.Update(key("ctrl+n"))
	m = next.(Model)
	require.Equal(t, screenLetter, m.screen)

	for i, v := range []string{"Ms. Smith", "Jane", "Engineer", "Acme", resumePath} {
		m.inputs[i].SetValue(v)
	}
	m.areas[1].SetValue("We need Go and Rust")

	// saving before a letter exists is an error
	next, cmd := m.Update(key("ctrl+p"))
	assert.Nil(t, cmd)
	assert.True(t, next.(Model).isErr)

	next, cmd = m.Update(key("ctrl+s"))
	m = next.(Model)
	done := runCmd[letterDoneMsg](t, cmd)
	require.NoError(t, done.err)
	next, _ = m.Update(done)
	m = next.(Model)

	assert.Equal(t, "cv.txt", letter.req.ResumeName)
	assert.Equal(t, []byte("Go developer"), letter.req.ResumeData)
	assert.Equal(t, "We need Go and Rust", letter.req.JobDescription)
	assert.Contains(t, m.content, "Score: 50%")
	assert.Contains(t, m.content, "Hire me.")

	next, cmd = m.Update(key("ctrl+p"))
	saved := runCmd[pdfSavedMsg](t, cmd)
	require.NoError(t, saved.err)
	next, _ = next.(Model).Update(saved)
	assert.Equal(t, "Saved "+pdfPath, next.(Model).status)

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

func TestFocusCycles(t *testing.T) {
	m := newModel(&fakeVideo{}, &fakeLetter{}, "")
	next, _ := m.Update(key("ctrl+n"))
	m = next.(Model)
	for i := 0; i < letterFieldCount; i++ {
		next, _ = m.Update(key("tab"))
		m = next.(Model)
	}
	assert.Equal(t, 0, m.letterFoc)
	assert.True(t, m.inputs[0].Focused())
}

func TestScreenShortcutsAreNotTyped(t *testing.T) {
	m := newModel(&fakeVideo{}, &fakeLetter{}, "")
	m.url.SetValue("https://youtu.be/abc123")
	next, cmd := m.Update(key("ctrl+p"))
	assert.Nil(t, cmd)
	assert.Equal(t, "https://youtu.be/abc123", next.(Model).url.Value())

	next, _ = m.Update(key("ctrl+n"))
	m = next.(Model)
	m.inputs[0].SetValue("Ms. Smith")
	next, cmd = m.Update(key("ctrl+q"))
	assert.Nil(t, cmd)
	assert.False(t, next.(Model).busy)
	assert.Equal(t, "Ms. Smith", next.(Model).inputs[0].Value())
}

func TestQuit(t *testing.T) {
	m := newModel(&fakeVideo{}, &fakeLetter{}, "")
	_, cmd := m.Update(key("esc"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRenderQuizEmpty(t *testing.T) {
	out := RenderQuiz(domain.Quiz{}, func(s ...string) string { return strings.Join(s, "") })
	assert.Contains(t, out, "did not return a usable quiz")
}
