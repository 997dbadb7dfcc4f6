package structured

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assist/internal/domain"
)

func TestParse_Resume(t *testing.T) {
	raw := "```json\n{\"skills\":[\"Go\",\"SQL\"],\"experience\":[\"Acme 2020-2023\"],\"achievements\":[],\"education\":[\"BSc\"],\"projects\":[]}\n```"

	got, err := Parse(raw, ResumeSchema, domain.EmptyResume())
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)
	assert.Equal(t, []string{"BSc"}, got.Education)
}

func TestParse_ResumeMissingCategoryIsValid(t *testing.T) {
	got, err := Parse(`{"skills":["Go"]}`, ResumeSchema, domain.EmptyResume())
	require.NoError(t, err)
	got.Normalize()
	assert.Equal(t, []string{"Go"}, got.Skills)
	assert.NotNil(t, got.Projects)
	assert.Empty(t, got.Projects)
}

func TestParse_NullCategory(t *testing.T) {
	raw := `{"skills":["Go","SQL"],"experience":["Acme"],"achievements":null,"education":[],"projects":null}`

	got, err := Parse(raw, ResumeSchema, domain.EmptyResume())
	require.NoError(t, err)
	got.Normalize()
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)
	assert.Equal(t, []string{"Acme"}, got.Experience)
	assert.NotNil(t, got.Achievements)
	assert.Empty(t, got.Achievements)
	assert.Empty(t, got.Projects)
}

func TestParse_QuizAfterBracketedPreamble(t *testing.T) {
	raw := "Here is your quiz [3 questions]:\n" +
		`{"questions":[{"question":"What is 2+2?","choices":["3","4","5","6"],"answer":"B"}]}`

	got, err := Parse(raw, QuizSchema, domain.Quiz{})
	require.NoError(t, err)
	require.Len(t, got.Questions, 1)
}

func TestParse_KeywordsAfterBracedPreamble(t *testing.T) {
	got, err := Parse("Keywords {10 of them}: [\"Go\", \"SQL\"]", KeywordsSchema, []string{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, got)
}

func TestParse_FallbackOnInvalid(t *testing.T) {
	fallback := domain.EmptyResume()

	tests := []struct {
		name  string
		raw   string
		stage string
	}{
		{"empty", "   ", StageEmpty},
		{"prose", "Sorry, I cannot help with that.", StageDecode},
		{"wrong type", `{"skills":"Go, SQL"}`, StageValidate},
		{"array instead of object", `["Go"]`, StageValidate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw, ResumeSchema, fallback)
			require.Error(t, err)
			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.stage, perr.Stage)
			assert.Equal(t, fallback, got)
		})
	}
}

func TestParse_Quiz(t *testing.T) {
	raw := `Here is your quiz:
{"questions":[{"question":"What is 2+2?","choices":["3","4","5","6"],"answer":"B"}]}`

	got, err := Parse(raw, QuizSchema, domain.Quiz{})
	require.NoError(t, err)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, "B", got.Questions[0].Answer)
	assert.Len(t, got.Questions[0].Choices, 4)
}

func TestParse_QuizRejectsBadQuestion(t *testing.T) {
	tests := map[string]string{
		"three choices": `{"questions":[{"question":"q","choices":["a","b","c"],"answer":"A"}]}`,
		"bad answer":    `{"questions":[{"question":"q","choices":["a","b","c","d"],"answer":"E"}]}`,
		"no question":   `{"questions":[{"choices":["a","b","c","d"],"answer":"A"}]}`,
		"missing root":  `{"items":[]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(raw, QuizSchema, domain.Quiz{})
			require.Error(t, err)
			assert.Empty(t, got.Questions)
		})
	}
}

func TestParse_Keywords(t *testing.T) {
	got, err := Parse(`["Go", "Docker"]`, KeywordsSchema, []string{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Docker"}, got)

	// python list literal is not JSON
	got, err = Parse(`['Go', 'Docker']`, KeywordsSchema, []string{})
	require.Error(t, err)
	assert.Empty(t, got)
}
