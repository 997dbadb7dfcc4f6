// Package structured turns free-form model output into typed values. The raw
// text is stripped of markdown fences, validated against a JSON Schema and only
// then decoded, so a malformed response never produces a half-filled value.
package structured

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"assist/internal/llm"
)

var (
	//go:embed schemas/resume.json
	ResumeSchema string
	//go:embed schemas/quiz.json
	QuizSchema string
	//go:embed schemas/keywords.json
	KeywordsSchema string
)

// Parse stages reported in ParseError.
const (
	StageEmpty    = "empty"
	StageSchema   = "schema"
	StageValidate = "validate"
	StageDecode   = "decode"
)

// ParseError describes why model output could not be turned into a value.
type ParseError struct {
	Stage string
	Cause error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error at %s: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("parse error at %s", e.Stage)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError lists the schema violations of a document.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "schema validation failed: " + strings.Join(e.Fields, "; ")
}

// Parse validates raw against schema and decodes it into T. On any failure it
// returns fallback together with a *ParseError.
func Parse[T any](raw, schema string, fallback T) (T, error) {
	doc := extract(raw, schema)
	if doc == "" {
		return fallback, &ParseError{Stage: StageEmpty, Cause: errors.New("empty response")}
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return fallback, &ParseError{Stage: StageSchema, Cause: err}
	}

	result, err := compiled.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		// document is not JSON at all
		return fallback, &ParseError{Stage: StageDecode, Cause: err}
	}
	if !result.Valid() {
		verr := &ValidationError{}
		for _, e := range result.Errors() {
			verr.Fields = append(verr.Fields, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return fallback, &ParseError{Stage: StageValidate, Cause: verr}
	}

	var out T
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return fallback, &ParseError{Stage: StageDecode, Cause: err}
	}
	return out, nil
}

// extract isolates the JSON document, anchored on the root type the schema
// declares when it names one.
func extract(raw, schema string) string {
	var root struct {
		Type any `json:"type"`
	}
	if err := json.Unmarshal([]byte(schema), &root); err == nil {
		switch root.Type {
		case "object":
			return llm.ExtractJSON(raw, '{')
		case "array":
			return llm.ExtractJSON(raw, '[')
		}
	}
	return llm.CleanJSONBlock(raw)
}
