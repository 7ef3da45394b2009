package inference

import (
	"encoding/json"
	"fmt"
	"strings"

	"codeport/internal/extractor"
	"codeport/internal/model"
)

// extractJSON pulls the first balanced JSON object out of model output,
// tolerating markdown fences and surrounding prose.
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	text = strings.TrimSpace(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object in response")
}

func decodeFileAnalysis(raw string) (*extractor.FileSkeleton, error) {
	obj, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var sk extractor.FileSkeleton
	if err := json.Unmarshal([]byte(obj), &sk); err != nil {
		return nil, fmt.Errorf("decode analysis response: %w", err)
	}
	return &sk, nil
}

func decodeClassification(raw string) (model.ComponentType, error) {
	obj, err := extractJSON(raw)
	if err != nil {
		return model.ComponentUnknown, err
	}
	var payload struct {
		ComponentType string `json:"component_type"`
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return model.ComponentUnknown, fmt.Errorf("decode classification response: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(payload.ComponentType)) {
	case "ui":
		return model.ComponentUI, nil
	case "logic":
		return model.ComponentLogic, nil
	case "data":
		return model.ComponentData, nil
	case "config":
		return model.ComponentConfig, nil
	default:
		return model.ComponentUnknown, fmt.Errorf("unrecognized component type %q", payload.ComponentType)
	}
}
