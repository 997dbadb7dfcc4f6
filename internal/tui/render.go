package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"assist/internal/domain"
	"assist/internal/service"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	formBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	matchedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	missingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	answerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func renderVideoResult(res *service.Result) string {
	if res.Task == domain.TaskSummarize {
		return sectionStyle.Render("Summary") + "\n\n" + res.Summary
	}
	return sectionStyle.Render("Quiz") + "\n\n" + RenderQuiz(res.Quiz, answerStyle.Render)
}

// RenderQuiz formats questions with lettered choices. answer styles the
// answer line.
func RenderQuiz(q domain.Quiz, answer func(...string) string) string {
	if len(q.Questions) == 0 {
		return "The model did not return a usable quiz. Try again."
	}
	var b strings.Builder
	for i, qq := range q.Questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, qq.Question)
		for j, c := range qq.Choices {
			fmt.Fprintf(&b, "   %c. %s\n", 'A'+j, c)
		}
		b.WriteString("   " + answer("Answer: "+qq.Answer) + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderLetterResult(res *service.LetterResult) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Your Cover Letter"))
	b.WriteString("\n\n")
	b.WriteString(res.Letter)
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("ATS Keyword Match Score"))
	fmt.Fprintf(&b, "\n\nScore: %d%%\n", res.Score.Score)
	b.WriteString("Matched: " + matchedStyle.Render(listOrNone(res.Score.Matched)) + "\n")
	b.WriteString("Missing: " + missingStyle.Render(listOrNone(res.Score.Missing)))
	return b.String()
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
