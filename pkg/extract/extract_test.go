package extract

import (
	"encoding/json"
	"testing"
)

func TestExtractCleanJSON(t *testing.T) {
	raw, ok := Extract(`  {"title": "Engineer"}  `, ShapeObject)
	if !ok {
		t.Fatal("Extract returned no result for clean JSON")
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("result not parseable: %v", err)
	}
	if m["title"] != "Engineer" {
		t.Errorf("title = %v, want Engineer", m["title"])
	}
}

func TestExtractFencedJSONWins(t *testing.T) {
	// A tagged fence must win before the untagged one and before bracket
	// scanning ever runs.
	text := "Here are the results:\n```\nnot json at all {\n```\n```json\n{\"a\": 1}\n```\ntrailing {\"b\": 2}"
	raw, ok := Extract(text, ShapeObject)
	if !ok {
		t.Fatal("Extract returned no result")
	}
	var m map[string]int
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["a"] != 1 {
		t.Errorf("got %v, want the tagged fenced block", m)
	}
}

func TestExtractFencedCaseInsensitive(t *testing.T) {
	text := "```JSON\n{\"x\": true}\n```"
	raw, ok := Extract(text, ShapeObject)
	if !ok {
		t.Fatal("Extract returned no result")
	}
	if string(raw) != `{"x": true}` {
		t.Errorf("raw = %s", raw)
	}
}

func TestExtractBracketBounds(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		shape Shape
		want  string
	}{
		{
			name:  "object in prose",
			text:  `The best match is {"title": "Dev"} according to the search.`,
			shape: ShapeObject,
			want:  `{"title": "Dev"}`,
		},
		{
			name:  "array before object",
			text:  `jobs: [{"title": "A"}] profile: {"skills": []}`,
			shape: ShapeArray,
			want:  `[{"title": "A"}]`,
		},
		{
			name:  "brackets inside strings ignored",
			text:  `result {"note": "uses { and } freely", "esc": "quote \" brace }"} end`,
			shape: ShapeObject,
			want:  `{"note": "uses { and } freely", "esc": "quote \" brace }"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := Extract(tt.text, tt.shape)
			if !ok {
				t.Fatal("Extract returned no result")
			}
			if string(raw) != tt.want {
				t.Errorf("raw = %s, want %s", raw, tt.want)
			}
		})
	}
}

func TestExtractLineByLine(t *testing.T) {
	// The stray opening brace defeats bracket scanning so only the
	// line-by-line strategy can recover the object.
	text := "an unmatched { brace in prose\nmore prose\n{\n  \"skills\": [\"go\"]\n}\nafterword"
	raw, ok := Extract(text, ShapeObject)
	if !ok {
		t.Fatal("Extract returned no result")
	}
	var m map[string][]string
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(m["skills"]) != 1 || m["skills"][0] != "go" {
		t.Errorf("skills = %v", m["skills"])
	}
}

func TestExtractShapeMismatchFallback(t *testing.T) {
	// Valid object, array expected: still returned as last resort.
	raw, ok := Extract(`{"title": "solo"}`, ShapeArray)
	if !ok {
		t.Fatal("expected last-resort result")
	}
	if string(raw) != `{"title": "solo"}` {
		t.Errorf("raw = %s", raw)
	}
}

func TestExtractNoStructuredContent(t *testing.T) {
	tests := []string{
		"",
		"   \n\t ",
		"I could not find any jobs matching your profile, sorry!",
		"unbalanced { brace and ] bracket noise",
	}
	for _, text := range tests {
		if raw, ok := Extract(text, ShapeObject); ok {
			t.Errorf("Extract(%q) = %s, want none", text, raw)
		}
		if raw, ok := Extract(text, ShapeArray); ok {
			t.Errorf("Extract(%q) array = %s, want none", text, raw)
		}
	}
}
