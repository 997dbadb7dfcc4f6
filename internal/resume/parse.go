package resume

import (
	"context"
	"strings"

	"assist/internal/domain"
	"assist/internal/logger"
	"assist/internal/prompts"
	"assist/internal/structured"
)

// Parse asks the model to split résumé text into the five categories. It never
// fails: blank text, a transport error or malformed output all yield the
// empty résumé.
func Parse(ctx context.Context, gen domain.Generator, text string) domain.ResumeData {
	if strings.TrimSpace(text) == "" {
		return domain.EmptyResume()
	}

	prompt := prompts.Format(prompts.MustGet("letter.json", "extract-resume"), map[string]string{
		"ResumeText": text,
	})
	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("résumé extraction call failed, using empty résumé")
		return domain.EmptyResume()
	}

	data, err := structured.Parse(raw, structured.ResumeSchema, domain.EmptyResume())
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("résumé extraction returned malformed output, using empty résumé")
	}
	data.Normalize()
	return data
}
