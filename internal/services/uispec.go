package services

import (
	"encoding/json"
	"regexp"
)

// UISpec is a declarative UI component specification carried by a
// generative_ui attachment instead of a binary payload.
type UISpec struct {
	Type     string                 `json:"type"`
	Props    map[string]interface{} `json:"props,omitempty"`
	Children []UISpec               `json:"children,omitempty"`
	Style    map[string]interface{} `json:"style,omitempty"`
	Handlers map[string]string      `json:"handlers,omitempty"`
}

// Providers are asked for JSON but answer in prose around it often enough
// that extraction is best-effort: a fenced block is tried first, then the
// widest bare JSON object span, then a minimal spec built from the request.
var (
	fencedJSONRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	bareJSONRegex   = regexp.MustCompile(`(?s)\{.*\}`)
)

// parseUISpec extracts a UI specification from raw provider output. It
// never fails: when no parseable JSON is found, a minimal spec is
// synthesized from the requested component type and parameters.
func parseUISpec(raw, uiType string, parameters map[string]interface{}) *UISpec {
	if m := fencedJSONRegex.FindStringSubmatch(raw); m != nil {
		if spec := decodeUISpec(m[1], uiType); spec != nil {
			return spec
		}
	}

	if m := bareJSONRegex.FindString(raw); m != "" {
		if spec := decodeUISpec(m, uiType); spec != nil {
			return spec
		}
	}

	return fallbackUISpec(uiType, parameters)
}

func decodeUISpec(candidate, uiType string) *UISpec {
	var spec UISpec
	if err := json.Unmarshal([]byte(candidate), &spec); err != nil {
		return nil
	}
	if spec.Type == "" {
		spec.Type = uiType
	}
	return &spec
}

func fallbackUISpec(uiType string, parameters map[string]interface{}) *UISpec {
	return &UISpec{
		Type:  uiType,
		Props: parameters,
	}
}
