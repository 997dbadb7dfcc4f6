package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"assist/internal/domain"
	"assist/internal/service"
)

var letterCmd = &cobra.Command{
	Use:   "letter",
	Short: "Write a cover letter and score the résumé against the job description",
	Long: "Write a cover letter from a résumé (PDF or text) or free-text experience and a job " +
		"description, then report the ATS keyword match score.",
	Args: cobra.NoArgs,
	RunE: runLetter,
}

var (
	letterContact    string
	letterApplicant  string
	letterRole       string
	letterCompany    string
	letterResumeFile string
	letterExperience string
	letterJobFile    string
	letterJobText    string
	letterPDFOut     string
)

func init() {
	f := letterCmd.Flags()
	f.StringVar(&letterContact, "contact", "", "Hiring manager or contact person")
	f.StringVar(&letterApplicant, "name", "", "Applicant name")
	f.StringVar(&letterRole, "role", "", "Role applied for")
	f.StringVar(&letterCompany, "company", "", "Company name")
	f.StringVarP(&letterResumeFile, "resume", "r", "", "Path to résumé (PDF or text)")
	f.StringVar(&letterExperience, "experience", "", "Free-text experience, used with or instead of --resume")
	f.StringVarP(&letterJobFile, "job-file", "j", "", "Path to a job description text file")
	f.StringVar(&letterJobText, "job", "", "Job description text")
	f.StringVarP(&letterPDFOut, "pdf", "o", "", "Also write the letter as PDF to this path")
	letterCmd.MarkFlagsMutuallyExclusive("job-file", "job")

	rootCmd.AddCommand(letterCmd)
}

func runLetter(cmd *cobra.Command, _ []string) error {
	req, err := letterRequestFromFlags()
	if err != nil {
		return err
	}
	a, err := buildApp(cmd.Context(), appCfg)
	if err != nil {
		return err
	}
	res, err := a.letter.Generate(cmd.Context(), req)
	if err != nil {
		return userError(err, domain.TaskLetter)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Letter)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "ATS keyword match score: %d%%\n", res.Score.Score)
	fmt.Fprintf(out, "Matched: %s\n", joinOrNone(res.Score.Matched))
	fmt.Fprintf(out, "Missing: %s\n", joinOrNone(res.Score.Missing))

	if letterPDFOut == "" {
		return nil
	}
	data, err := res.PDF()
	if err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	if err := os.WriteFile(letterPDFOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", letterPDFOut)
	return nil
}

func letterRequestFromFlags() (service.LetterRequest, error) {
	req := service.LetterRequest{
		ContactPerson:  letterContact,
		ApplicantName:  letterApplicant,
		Role:           letterRole,
		Company:        letterCompany,
		JobDescription: letterJobText,
		Experience:     letterExperience,
	}
	if letterJobFile != "" {
		data, err := os.ReadFile(letterJobFile)
		if err != nil {
			return req, fmt.Errorf("failed to read job description: %w", err)
		}
		req.JobDescription = string(data)
	}
	if letterResumeFile != "" {
		data, err := os.ReadFile(letterResumeFile)
		if err != nil {
			return req, fmt.Errorf("failed to read résumé: %w", err)
		}
		req.ResumeName = filepath.Base(letterResumeFile)
		req.ResumeData = data
	}
	return req, nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
