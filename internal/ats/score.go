// Package ats estimates how well a candidate matches a job description by
// keyword overlap.
package ats

import (
	"context"
	"math"
	"strings"

	"assist/internal/domain"
	"assist/internal/logger"
	"assist/internal/prompts"
	"assist/internal/structured"
)

// Score reports which keywords occur in candidateText. Matching is
// case-insensitive substring containment, so short keywords also match inside
// longer words ("Go" in "Google"). Matched and Missing keep keyword order and
// partition Keywords exactly.
func Score(keywords []string, candidateText string) domain.ScoreResult {
	res := domain.ScoreResult{
		Keywords: append([]string{}, keywords...),
		Matched:  []string{},
		Missing:  []string{},
	}
	if len(keywords) == 0 {
		return res
	}

	haystack := strings.ToLower(candidateText)
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			res.Matched = append(res.Matched, kw)
		} else {
			res.Missing = append(res.Missing, kw)
		}
	}
	res.Score = int(math.Round(100 * float64(len(res.Matched)) / float64(len(keywords))))
	return res
}

// CandidateText is the part of a résumé that keywords are matched against.
func CandidateText(r domain.ResumeData) string {
	parts := []string{
		strings.Join(r.Skills, " "),
		strings.Join(r.Experience, " "),
		strings.Join(r.Projects, " "),
	}
	return strings.Join(parts, " ")
}

// ExtractKeywords asks the model for the most important keywords of a job
// description. The reply must be a JSON array of strings; anything else, or a
// failed call, yields an empty list.
func ExtractKeywords(ctx context.Context, gen domain.Generator, jobDescription string) []string {
	if strings.TrimSpace(jobDescription) == "" {
		return []string{}
	}

	prompt := prompts.Format(prompts.MustGet("letter.json", "extract-keywords"), map[string]string{
		"JobDescription": jobDescription,
	})
	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("keyword extraction call failed")
		return []string{}
	}

	keywords, err := structured.Parse(raw, structured.KeywordsSchema, []string{})
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("keyword extraction returned malformed output")
		return []string{}
	}
	return normalizeKeywords(keywords)
}

func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, kw := range in {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}
	return out
}
