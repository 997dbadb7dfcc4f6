package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"assist/internal/domain"
	"assist/internal/resume"
	"assist/internal/transcript"
)

// UserMessage maps a run failure to a message and a hint for display.
// Failures without a known cause get a generic message and a task hint.
func UserMessage(err error, task domain.Task) (msg, hint string) {
	var verr validator.ValidationErrors
	switch {
	case err == nil:
		return "", ""
	case errors.Is(err, transcript.ErrInvalidURL):
		return "Invalid YouTube URL.", "Use a youtube.com/watch?v=… or youtu.be/… link."
	case errors.Is(err, transcript.ErrNoTranscript):
		return "This video has no transcript.", "Try a video with captions enabled."
	case errors.Is(err, ErrQuestionCount):
		return ErrQuestionCount.Error() + ".", ""
	case errors.Is(err, resume.ErrUnsupportedFormat):
		return "Unsupported résumé file.", "Upload a PDF or a plain text file, or paste your experience instead."
	case errors.As(err, &verr):
		return "Please fill out all fields and upload a résumé.", describeValidation(verr)
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out.", "The model or transcript service is slow; try again."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled.", ""
	}

	msg = "Error: " + err.Error()
	switch task {
	case domain.TaskSummarize:
		hint = "This video may not have a transcript."
	case domain.TaskQuiz:
		hint = "Some videos do not support AI quiz generation due to transcript issues."
	default:
		hint = "Check your API key and network connection."
	}
	return msg, hint
}

func describeValidation(verr validator.ValidationErrors) string {
	if len(verr) == 0 {
		return ""
	}
	names := make([]string, 0, len(verr))
	for _, fe := range verr {
		names = append(names, fe.Field())
	}
	return "Missing or invalid: " + strings.Join(names, ", ") + "."
}
