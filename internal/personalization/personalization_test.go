package personalization

import "testing"

func TestNodeTypesEmptyAnswers(t *testing.T) {
	if got := NodeTypes(nil); len(got) != 0 {
		t.Fatalf("NodeTypes(nil) = %v, want empty", got)
	}
	if got := NodeTypes(map[string]any{}); len(got) != 0 {
		t.Fatalf("NodeTypes(empty) = %v, want empty", got)
	}
}

func TestNodeTypesByWorkArea(t *testing.T) {
	got := NodeTypes(map[string]any{AnswerKeyWorkArea: WorkAreaFinance})
	if len(got) == 0 {
		t.Fatalf("no node types for finance work area")
	}
	for _, nodeType := range got {
		if nodeType == "" {
			t.Fatalf("empty node type in %v", got)
		}
	}
}

func TestNodeTypesMultipleAreasDeduplicated(t *testing.T) {
	answers := map[string]any{
		AnswerKeyWorkArea:    []any{WorkAreaFinance, WorkAreaFinance, WorkAreaIT},
		AnswerKeyCodingSkill: "proficient",
	}
	got := NodeTypes(answers)

	seen := make(map[string]int)
	for _, nodeType := range got {
		seen[nodeType]++
		if seen[nodeType] > 1 {
			t.Fatalf("duplicate node type %q in %v", nodeType, got)
		}
	}

	hasCode := false
	for _, nodeType := range got {
		if nodeType == "n8n-nodes-base.code" {
			hasCode = true
		}
	}
	if !hasCode {
		t.Fatalf("coding node types missing for proficient answer: %v", got)
	}
}

func TestNodeTypesUnknownAnswersIgnored(t *testing.T) {
	answers := map[string]any{
		AnswerKeyWorkArea: "something-unrecognized",
		"unknownQuestion": 42,
	}
	if got := NodeTypes(answers); len(got) != 0 {
		t.Fatalf("NodeTypes = %v, want empty for unknown answers", got)
	}
}
