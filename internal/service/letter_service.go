package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"assist/internal/ats"
	"assist/internal/domain"
	"assist/internal/logger"
	"assist/internal/pdf"
	"assist/internal/prompts"
	"assist/internal/resume"
)

// LetterRequest is the cover letter form. A résumé file or free-text
// experience is required.
type LetterRequest struct {
	ContactPerson  string `json:"contact_person" form:"contact_person" validate:"required"`
	ApplicantName  string `json:"applicant_name" form:"applicant_name" validate:"required"`
	Role           string `json:"role" form:"role" validate:"required"`
	Company        string `json:"company" form:"company" validate:"required"`
	JobDescription string `json:"job_description" form:"job_description" validate:"required"`
	ResumeName     string `json:"resume_name" form:"-"`
	ResumeData     []byte `json:"-" form:"-" validate:"required_without=Experience"`
	Experience     string `json:"experience" form:"experience" validate:"required_without=ResumeData"`
}

// LetterResult holds the generated letter and its keyword score.
type LetterResult struct {
	Letter string             `json:"letter"`
	Resume domain.ResumeData  `json:"resume"`
	Score  domain.ScoreResult `json:"score"`
}

// PDF renders the letter for download.
func (r *LetterResult) PDF() ([]byte, error) {
	return pdf.Render(r.Letter)
}

// LetterService writes cover letters from a résumé and a job description.
type LetterService struct {
	generator domain.Generator
	validate  *validator.Validate
}

func NewLetterService(generator domain.Generator) *LetterService {
	return &LetterService{generator: generator, validate: NewValidator()}
}

// NewValidator returns a validator reporting fields by their json name.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Generate validates req, extracts and structures the résumé, asks the model
// for a letter and scores the résumé against the job description. Only letter
// generation failures are returned; résumé and score problems degrade to empty
// values.
func (s *LetterService) Generate(ctx context.Context, req LetterRequest) (*LetterResult, error) {
	trimRequest(&req)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	text, err := s.resumeText(ctx, req)
	if err != nil {
		return nil, err
	}
	data := resume.Parse(ctx, s.generator, text)

	prompt := prompts.Format(prompts.MustGet("letter.json", "cover-letter"), map[string]string{
		"ContactPerson":  req.ContactPerson,
		"ApplicantName":  req.ApplicantName,
		"Role":           req.Role,
		"Company":        req.Company,
		"Skills":         bulletList(data.Skills),
		"Experience":     bulletList(data.Experience),
		"Achievements":   bulletList(data.Achievements),
		"Education":      bulletList(data.Education),
		"Projects":       bulletList(data.Projects),
		"JobDescription": req.JobDescription,
	})
	letter, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate cover letter: %w", err)
	}
	letter = strings.TrimSpace(letter)
	if letter == "" {
		return nil, errors.New("generate cover letter: model returned an empty letter")
	}

	keywords := ats.ExtractKeywords(ctx, s.generator, req.JobDescription)
	score := ats.Score(keywords, ats.CandidateText(data))

	logger.Ctx(ctx).Info().
		Str("company", req.Company).
		Int("score", score.Score).
		Int("keywords", len(keywords)).
		Msg("cover letter generated")
	return &LetterResult{Letter: letter, Resume: data, Score: score}, nil
}

// resumeText prefers the uploaded file and appends free-text experience.
func (s *LetterService) resumeText(ctx context.Context, req LetterRequest) (string, error) {
	var parts []string
	if len(req.ResumeData) > 0 {
		text, err := resume.ExtractText(ctx, req.ResumeName, req.ResumeData)
		switch {
		case errors.Is(err, resume.ErrUnsupportedFormat):
			return "", err
		case err != nil:
			logger.Ctx(ctx).Warn().Err(err).Str("file", req.ResumeName).Msg("résumé text extraction failed")
		case strings.TrimSpace(text) != "":
			parts = append(parts, text)
		}
	}
	if req.Experience != "" {
		parts = append(parts, req.Experience)
	}
	return strings.Join(parts, "\n\n"), nil
}

func trimRequest(req *LetterRequest) {
	for _, f := range []*string{&req.ContactPerson, &req.ApplicantName, &req.Role, &req.Company, &req.JobDescription, &req.Experience} {
		*f = strings.TrimSpace(*f)
	}
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return "- " + strings.Join(items, "\n- ")
}
