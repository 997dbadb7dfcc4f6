package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"assist/internal/domain"
	"assist/internal/service"
)

// VideoPort is the TUI-facing subset of the video service.
type VideoPort interface {
	Summarize(ctx context.Context, videoURL string) (*service.Result, error)
	Quiz(ctx context.Context, videoURL string, n int) (*service.Result, error)
}

// LetterPort is the TUI-facing subset of the letter service.
type LetterPort interface {
	Generate(ctx context.Context, req service.LetterRequest) (*service.LetterResult, error)
}

type screen int

const (
	screenVideo screen = iota
	screenLetter
)

// letter form fields, inputs first then text areas
const (
	fieldContact = iota
	fieldName
	fieldRole
	fieldCompany
	fieldResumePath
	fieldExperience
	fieldJobDescription
	letterFieldCount
)

const numInputs = fieldResumePath + 1

type videoDoneMsg struct {
	task domain.Task
	res  *service.Result
	err  error
}

type letterDoneMsg struct {
	res *service.LetterResult
	err error
}

type pdfSavedMsg struct {
	path string
	err  error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx     context.Context
	video   VideoPort
	letter  LetterPort
	pdfPath string

	screen   screen
	url      textinput.Model
	count    textinput.Model
	videoFoc int

	inputs    []textinput.Model
	areas     []textarea.Model
	letterFoc int

	viewport viewport.Model
	spinner  spinner.Model
	busy     bool
	status   string
	isErr    bool
	content  string
	lastLet  *service.LetterResult
	width    int
	height   int
	ready    bool
}

// New creates a new TUI model instance. pdfPath is where the letter PDF is saved.
func New(ctx context.Context, video VideoPort, letter LetterPort, pdfPath string) Model {
	url := textinput.New()
	url.Prompt = "URL  > "
	url.Placeholder = "https://www.youtube.com/watch?v=…"
	url.Focus()

	count := textinput.New()
	count.Prompt = "Questions > "
	count.CharLimit = 2
	count.SetValue(strconv.Itoa(service.DefaultQuestions))

	labels := []string{"To", "Your name", "Role", "Company", "Résumé file (PDF or text)"}
	inputs := make([]textinput.Model, len(labels))
	for i, l := range labels {
		ti := textinput.New()
		ti.Prompt = fmt.Sprintf("%-12s> ", truncate(l, 12))
		ti.Placeholder = l
		inputs[i] = ti
	}
	areas := make([]textarea.Model, 2)
	for i, l := range []string{"Experience (optional if a résumé file is given)", "Paste the job description"} {
		ta := textarea.New()
		ta.Placeholder = l
		ta.ShowLineNumbers = false
		ta.CharLimit = 0
		ta.SetHeight(4)
		areas[i] = ta
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	if pdfPath == "" {
		pdfPath = "cover_letter.pdf"
	}
	return Model{
		ctx:      ctx,
		video:    video,
		letter:   letter,
		pdfPath:  pdfPath,
		url:      url,
		count:    count,
		inputs:   inputs,
		areas:    areas,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   "ctrl+s summarize · ctrl+q quiz · ctrl+n letter screen · tab next field · esc quit",
		content:  "Paste a YouTube URL to summarize the video or generate a quiz.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case videoDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.err, msg.task)
			return m, nil
		}
		m.setContent(renderVideoResult(msg.res))
		m.setStatus(fmt.Sprintf("Done in %s · %d chunks, %d retrieved", msg.res.Elapsed.Round(10*time.Millisecond), msg.res.Chunks, len(msg.res.Retrieved)))
		return m, nil

	case letterDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.err, domain.TaskLetter)
			return m, nil
		}
		m.lastLet = msg.res
		m.setContent(renderLetterResult(msg.res))
		m.setStatus("Letter ready · ctrl+p save as PDF")
		return m, nil

	case pdfSavedMsg:
		if msg.err != nil {
			m.fail(msg.err, domain.TaskLetter)
			return m, nil
		}
		m.setStatus("Saved " + msg.path)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "ctrl+n":
			return m.switchScreen()
		case "tab":
			return m.moveFocus(1)
		case "shift+tab":
			return m.moveFocus(-1)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case "ctrl+s":
			if m.screen == screenVideo {
				return m.startVideo(domain.TaskSummarize)
			}
			return m.startLetter()
		case "ctrl+q":
			if m.screen == screenVideo {
				return m.startVideo(domain.TaskQuiz)
			}
			return m, nil
		case "ctrl+p":
			if m.screen == screenLetter {
				return m.savePDF()
			}
			return m, nil
		case "enter":
			if m.screen == screenVideo && m.videoFoc == 0 {
				return m.startVideo(domain.TaskSummarize)
			}
		}
	}
	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.screen == screenVideo {
		if m.videoFoc == 0 {
			m.url, cmd = m.url.Update(msg)
		} else {
			m.count, cmd = m.count.Update(msg)
		}
		return m, cmd
	}
	if m.letterFoc < numInputs {
		m.inputs[m.letterFoc], cmd = m.inputs[m.letterFoc].Update(msg)
	} else {
		i := m.letterFoc - numInputs
		m.areas[i], cmd = m.areas[i].Update(msg)
	}
	return m, cmd
}

func (m Model) startVideo(task domain.Task) (tea.Model, tea.Cmd) {
	if m.busy {
		m.setStatus("A run is already in progress.")
		return m, nil
	}
	url := strings.TrimSpace(m.url.Value())
	if url == "" {
		m.setError("Please enter a YouTube URL.")
		return m, nil
	}
	n := 0
	if task == domain.TaskQuiz {
		var err error
		n, err = strconv.Atoi(strings.TrimSpace(m.count.Value()))
		if err != nil || n < service.MinQuestions || n > service.MaxQuestions {
			m.setError(service.ErrQuestionCount.Error() + ".")
			return m, nil
		}
	}

	m.busy = true
	label := "Generating summary…"
	if task == domain.TaskQuiz {
		label = "Generating quiz…"
	}
	m.setStatus(label)

	ctx, video := m.ctx, m.video
	run := func() tea.Msg {
		var (
			res *service.Result
			err error
		)
		if task == domain.TaskQuiz {
			res, err = video.Quiz(ctx, url, n)
		} else {
			res, err = video.Summarize(ctx, url)
		}
		return videoDoneMsg{task: task, res: res, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

func (m Model) startLetter() (tea.Model, tea.Cmd) {
	if m.busy {
		m.setStatus("A run is already in progress.")
		return m, nil
	}
	req := service.LetterRequest{
		ContactPerson:  m.inputs[fieldContact].Value(),
		ApplicantName:  m.inputs[fieldName].Value(),
		Role:           m.inputs[fieldRole].Value(),
		Company:        m.inputs[fieldCompany].Value(),
		Experience:     m.areas[fieldExperience-numInputs].Value(),
		JobDescription: m.areas[fieldJobDescription-numInputs].Value(),
	}
	path := strings.TrimSpace(m.inputs[fieldResumePath].Value())

	m.busy = true
	m.lastLet = nil
	m.setStatus("Generating cover letter…")

	ctx, letter := m.ctx, m.letter
	run := func() tea.Msg {
		if path != "" {
			data, err := os.ReadFile(expandHome(path))
			if err != nil {
				return letterDoneMsg{err: fmt.Errorf("read résumé: %w", err)}
			}
			req.ResumeName = filepath.Base(path)
			req.ResumeData = data
		}
		res, err := letter.Generate(ctx, req)
		return letterDoneMsg{res: res, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

func (m Model) savePDF() (tea.Model, tea.Cmd) {
	if m.lastLet == nil {
		m.setError("Generate a letter first.")
		return m, nil
	}
	res, path := m.lastLet, m.pdfPath
	return m, func() tea.Msg {
		data, err := res.PDF()
		if err == nil {
			err = os.WriteFile(path, data, 0o644)
		}
		return pdfSavedMsg{path: path, err: err}
	}
}

func (m Model) switchScreen() (tea.Model, tea.Cmd) {
	m.blurAll()
	var cmd tea.Cmd
	if m.screen == screenVideo {
		m.screen = screenLetter
		m.letterFoc = 0
		cmd = m.inputs[0].Focus()
		m.setStatus("ctrl+s generate letter · ctrl+p save PDF · ctrl+n video screen · tab next field · esc quit")
		m.content = "Fill in the form and press ctrl+s."
	} else {
		m.screen = screenVideo
		m.videoFoc = 0
		cmd = m.url.Focus()
		m.setStatus("ctrl+s summarize · ctrl+q quiz · ctrl+n letter screen · tab next field · esc quit")
		m.content = "Paste a YouTube URL to summarize the video or generate a quiz."
	}
	m.layout()
	return m, cmd
}

func (m Model) moveFocus(delta int) (tea.Model, tea.Cmd) {
	m.blurAll()
	if m.screen == screenVideo {
		m.videoFoc = (m.videoFoc + delta + 2) % 2
		if m.videoFoc == 0 {
			return m, m.url.Focus()
		}
		return m, m.count.Focus()
	}
	m.letterFoc = (m.letterFoc + delta + letterFieldCount) % letterFieldCount
	if m.letterFoc < numInputs {
		return m, m.inputs[m.letterFoc].Focus()
	}
	return m, m.areas[m.letterFoc-numInputs].Focus()
}

func (m *Model) blurAll() {
	m.url.Blur()
	m.count.Blur()
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	for i := range m.areas {
		m.areas[i].Blur()
	}
}

func (m *Model) layout() {
	if !m.ready {
		return
	}
	w := max(20, m.width-4)
	m.url.Width = w - 8
	for i := range m.inputs {
		m.inputs[i].Width = w - 16
	}
	for i := range m.areas {
		m.areas[i].SetWidth(w)
	}
	_, rh := resultBoxStyle.GetFrameSize()
	reserved := 1 + lipgloss.Height(m.formView()) + 1 // header, form, status
	m.viewport.Width = max(20, m.width-2)
	m.viewport.Height = max(3, m.height-reserved-rh)
	m.viewport.SetContent(m.content)
}

func (m *Model) setContent(s string) {
	m.content = s
	m.viewport.SetContent(s)
	m.viewport.GotoTop()
}

func (m *Model) setStatus(s string) {
	m.status, m.isErr = s, false
}

func (m *Model) setError(s string) {
	m.status, m.isErr = s, true
}

func (m *Model) fail(err error, task domain.Task) {
	msg, hint := service.UserMessage(err, task)
	if hint != "" {
		msg += " " + hint
	}
	m.setError(msg)
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := "YouTube Summarizer and Quiz Generator"
	if m.screen == screenLetter {
		title = "Cover Letter Generator"
	}
	header := headerStyle.Render(title)
	results := resultBoxStyle.Render(m.viewport.View())

	status := statusStyle.Render(m.status)
	if m.isErr {
		status = errorStyle.Render(m.status)
	}
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + m.formView() + "\n" + results + "\n" + status
}

func (m Model) formView() string {
	if m.screen == screenVideo {
		return formBoxStyle.Render(m.url.View() + "\n" + m.count.View())
	}
	var b strings.Builder
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	for i := range m.areas {
		b.WriteString(m.areas[i].View())
		if i < len(m.areas)-1 {
			b.WriteString("\n")
		}
	}
	return formBoxStyle.Render(b.String())
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
