package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	NoTextFallback = "No text was produced by the model."
	RawDumpLimit   = 2000
)

type responseShape struct {
	Candidates []candidateShape `json:"candidates"`
	Output     []struct {
		Content json.RawMessage `json:"content"`
	} `json:"output"`
}

// candidateShape accepts every text field name seen across the provider's
// response variants. Fields stay raw so a variant with a non-string value in one
// of them does not fail the whole response.
type candidateShape struct {
	Output  json.RawMessage `json:"output"`
	Text    json.RawMessage `json:"text"`
	Content json.RawMessage `json:"content"`
}

func (c candidateShape) text() string {
	if s := asString(c.Output); s != "" {
		return s
	}
	if s := asString(c.Text); s != "" {
		return s
	}
	return partsText(c.Content)
}

// Normalize extracts the generated text from a raw upstream response body:
// candidates first, then output content parts, then a fallback.
func Normalize(raw []byte, rawFallback bool) (string, error) {
	var shape responseShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return "", fmt.Errorf("failed to parse upstream response: %w", err)
		}
	}

	if len(shape.Candidates) > 0 {
		texts := make([]string, 0, len(shape.Candidates))
		for _, c := range shape.Candidates {
			texts = append(texts, c.text())
		}
		return strings.TrimSpace(strings.Join(texts, "\n")), nil
	}

	if len(shape.Output) > 0 && len(shape.Output[0].Content) > 0 {
		if parts, ok := partList(shape.Output[0].Content); ok {
			texts := make([]string, 0, len(parts))
			for _, p := range parts {
				texts = append(texts, partText(p))
			}
			return strings.Join(texts, "\n"), nil
		}
	}

	return fallbackText(raw, rawFallback), nil
}

func fallbackText(raw []byte, rawFallback bool) string {
	if !rawFallback {
		return NoTextFallback
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err == nil {
		raw = compact.Bytes()
	}
	dump := []rune(string(raw))
	if len(dump) > RawDumpLimit {
		dump = dump[:RawDumpLimit]
	}
	return string(dump)
}

func asString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// partList accepts either a bare list of parts or a {"parts": [...]} object.
func partList(raw json.RawMessage) ([]json.RawMessage, bool) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err == nil {
		return parts, true
	}
	var content struct {
		Parts []json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(raw, &content); err == nil && content.Parts != nil {
		return content.Parts, true
	}
	return nil, false
}

func partText(raw json.RawMessage) string {
	if s := asString(raw); s != "" {
		return s
	}
	var part struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &part); err != nil {
		return ""
	}
	return part.Text
}

func partsText(raw json.RawMessage) string {
	parts, ok := partList(raw)
	if !ok {
		return ""
	}
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := partText(p); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n")
}
