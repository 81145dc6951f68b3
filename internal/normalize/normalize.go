// Package normalize coerces loosely typed backend values into the shapes the UI renders.
//
// Rules:
//   - string: used as is
//   - array: each element coerced, joined with newlines
//   - object: JSON text (indented when pretty)
//   - null or absent: empty string
//   - number and bool: their literal text
package normalize

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/verte-zerg/codetutor/internal/model"
)

// Text coerces a raw JSON value to display text.
func Text(raw json.RawMessage, pretty bool) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw)
		}
		return s
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return string(raw)
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, Text(item, pretty))
		}
		return strings.Join(parts, "\n")
	case '{':
		var buf bytes.Buffer
		var err error
		if pretty {
			err = json.Indent(&buf, raw, "", "  ")
		} else {
			err = json.Compact(&buf, raw)
		}
		if err != nil {
			return string(raw)
		}
		return buf.String()
	case 'n':
		if string(raw) == "null" {
			return ""
		}
	}
	return string(raw)
}

// Code coerces a scaffolding value to editor text: pretty-printed and trimmed.
func Code(raw json.RawMessage) string {
	return strings.TrimSpace(Text(raw, true))
}

// IsArray reports whether raw holds a JSON array.
func IsArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// Strings coerces each element of an array to text. Non-arrays collapse to an empty slice.
func Strings(raw json.RawMessage) []string {
	items := elements(raw)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, Text(item, false))
	}
	return out
}

// Sections decodes an array of section objects, skipping malformed elements.
func Sections(raw json.RawMessage) []model.Section {
	items := elements(raw)
	out := make([]model.Section, 0, len(items))
	for _, item := range items {
		var fields struct {
			Title   json.RawMessage `json:"title"`
			Content json.RawMessage `json:"content"`
			Code    json.RawMessage `json:"code"`
		}
		if !isObject(item) || json.Unmarshal(item, &fields) != nil {
			continue
		}
		out = append(out, model.Section{
			Title:   Text(fields.Title, false),
			Content: Text(fields.Content, true),
			Code:    strings.TrimSpace(Text(fields.Code, true)),
		})
	}
	return out
}

// Explanations decodes an array of wrong-answer explanations. Elements that are plain
// strings become explanations without visuals; anything else that is not an object is skipped.
func Explanations(raw json.RawMessage) []model.Explanation {
	items := elements(raw)
	out := make([]model.Explanation, 0, len(items))
	for _, item := range items {
		if isString(item) {
			out = append(out, model.Explanation{Explanation: Text(item, false), ConceptKeywords: []string{}})
			continue
		}
		var fields struct {
			Explanation     json.RawMessage `json:"explanation"`
			Visual          json.RawMessage `json:"visual_explanation"`
			ConceptKeywords json.RawMessage `json:"concept_keywords"`
		}
		if !isObject(item) || json.Unmarshal(item, &fields) != nil {
			continue
		}
		exp := model.Explanation{
			Explanation:     Text(fields.Explanation, true),
			ConceptKeywords: Strings(fields.ConceptKeywords),
		}
		if isObject(fields.Visual) {
			var visual struct {
				Type    json.RawMessage `json:"type"`
				Content json.RawMessage `json:"content"`
			}
			if json.Unmarshal(fields.Visual, &visual) == nil {
				exp.Visual = model.Visual{
					Type:    Text(visual.Type, false),
					Content: Text(visual.Content, true),
				}
			}
		}
		if exp.Visual.Type == "" {
			exp.Visual.Type = "none"
		}
		out = append(out, exp)
	}
	return out
}

// Keywords coerces concept keywords to a de-duplicated list, preserving first occurrence order.
func Keywords(raw json.RawMessage) []string {
	values := Strings(raw)
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func elements(raw json.RawMessage) []json.RawMessage {
	if !IsArray(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func isString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}
