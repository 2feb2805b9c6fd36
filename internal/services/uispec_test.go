package services

import "testing"

func TestParseUISpec_FencedJSON(t *testing.T) {
	raw := "Here is the component you asked for:\n\n```json\n{\"type\": \"card\", \"props\": {\"title\": \"Moodboard\"}}\n```\n\nLet me know if you want changes."

	spec := parseUISpec(raw, "card", nil)
	if spec.Type != "card" {
		t.Errorf("Type = %q, expected %q", spec.Type, "card")
	}
	if spec.Props["title"] != "Moodboard" {
		t.Errorf("Props[title] = %v, expected %q", spec.Props["title"], "Moodboard")
	}
}

func TestParseUISpec_FenceWithoutLanguage(t *testing.T) {
	raw := "```\n{\"type\": \"gallery\"}\n```"

	spec := parseUISpec(raw, "card", nil)
	if spec.Type != "gallery" {
		t.Errorf("Type = %q, expected %q", spec.Type, "gallery")
	}
}

func TestParseUISpec_BareJSON(t *testing.T) {
	raw := "Sure! {\"type\": \"color_palette\", \"props\": {\"colors\": [\"#fff\"]}} — hope that helps."

	spec := parseUISpec(raw, "color_palette", nil)
	if spec.Type != "color_palette" {
		t.Errorf("Type = %q, expected %q", spec.Type, "color_palette")
	}
	if spec.Props == nil {
		t.Fatal("Props should be decoded")
	}
}

func TestParseUISpec_FencedTakesPrecedence(t *testing.T) {
	// A bare object appears before the fence; the fenced one must win.
	raw := "{\"type\": \"wrong\"} and the real one:\n```json\n{\"type\": \"right\"}\n```"

	spec := parseUISpec(raw, "fallback", nil)
	if spec.Type != "right" {
		t.Errorf("Type = %q, expected fenced block to win", spec.Type)
	}
}

func TestParseUISpec_MissingTypeDefaultsToRequested(t *testing.T) {
	raw := "```json\n{\"props\": {\"count\": 3}}\n```"

	spec := parseUISpec(raw, "timeline", nil)
	if spec.Type != "timeline" {
		t.Errorf("Type = %q, expected requested type to fill in", spec.Type)
	}
}

func TestParseUISpec_Fallback(t *testing.T) {
	params := map[string]interface{}{"style": "minimal"}

	spec := parseUISpec("I could not produce the component, sorry.", "moodboard", params)
	if spec.Type != "moodboard" {
		t.Errorf("Type = %q, expected %q", spec.Type, "moodboard")
	}
	if spec.Props["style"] != "minimal" {
		t.Errorf("fallback should carry request parameters, got %v", spec.Props)
	}
}

func TestParseUISpec_MalformedJSONFallsBack(t *testing.T) {
	raw := "```json\n{\"type\": \"card\", broken\n```"

	spec := parseUISpec(raw, "card", nil)
	if spec == nil {
		t.Fatal("parseUISpec never returns nil")
	}
	if spec.Type != "card" {
		t.Errorf("Type = %q, expected fallback to requested type", spec.Type)
	}
}

func TestParseUISpec_NestedChildren(t *testing.T) {
	raw := "```json\n{\"type\": \"stack\", \"children\": [{\"type\": \"image\"}, {\"type\": \"caption\"}]}\n```"

	spec := parseUISpec(raw, "stack", nil)
	if len(spec.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(spec.Children))
	}
	if spec.Children[0].Type != "image" || spec.Children[1].Type != "caption" {
		t.Errorf("children decoded incorrectly: %+v", spec.Children)
	}
}
