package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"assist/internal/domain"
	"assist/internal/service"
	"assist/internal/tui"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <youtube-url>",
	Short: "Summarize a YouTube video from its transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

var quizQuestions int

var quizCmd = &cobra.Command{
	Use:   "quiz <youtube-url>",
	Short: "Generate a multiple-choice quiz from a YouTube video",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuiz,
}

func init() {
	quizCmd.Flags().IntVarP(&quizQuestions, "questions", "n", service.DefaultQuestions,
		fmt.Sprintf("Number of questions (%d-%d)", service.MinQuestions, service.MaxQuestions))
	rootCmd.AddCommand(summarizeCmd, quizCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context(), appCfg)
	if err != nil {
		return err
	}
	res, err := a.video.Summarize(cmd.Context(), args[0])
	if err != nil {
		return userError(err, domain.TaskSummarize)
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Summary)
	return nil
}

func runQuiz(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context(), appCfg)
	if err != nil {
		return err
	}
	res, err := a.video.Quiz(cmd.Context(), args[0], quizQuestions)
	if err != nil {
		return userError(err, domain.TaskQuiz)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderQuiz(res.Quiz, plain))
	return nil
}

func plain(s ...string) string { return strings.Join(s, " ") }

// userError rewrites err into the message and hint shown to people.
func userError(err error, task domain.Task) error {
	msg, hint := service.UserMessage(err, task)
	if hint == "" {
		return errors.New(msg)
	}
	return fmt.Errorf("%s\n%s", msg, hint)
}
