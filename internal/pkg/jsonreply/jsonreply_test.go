package jsonreply

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseFenceIsTransparent(t *testing.T) {
	inner := `{"courseTitle": "Algebra I", "chapters": [{"chapterTitle": "Linear equations", "topics": ["slope"]}]}`

	cases := map[string]string{
		"bare":            inner,
		"bare padded":     "\n\n  " + inner + "  \n",
		"json fence":      "```json\n" + inner + "\n```",
		"upper fence":     "```JSON\n" + inner + "\n```",
		"unlabeled fence": "```\n" + inner + "\n```",
		"inline label":    "```json " + inner + "```",
		"with prose":      "Here is your course:\n```json\n" + inner + "\n```\nLet me know if you need more.",
		"unclosed fence":  "```json\n" + inner,
	}

	want, err := Parse(inner)
	if err != nil {
		t.Fatalf("Parse(inner) returned error: %v", err)
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(input)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if !bytes.Equal(got, want) {
				t.Fatalf("got %s, want %s", got, want)
			}
		})
	}
}

func TestParseFenceWithBackticksInStrings(t *testing.T) {
	inners := map[string]string{
		"inline code": "{\"flashcards\":[{\"front\":\"Print in Go\",\"back\":\"```go fmt.Println() ```\"}]}",
		"json label":  "{\"qna\":[{\"question\":\"Wrap?\",\"answer\":\"```json {} ```\"}]}",
	}
	for name, inner := range inners {
		t.Run(name, func(t *testing.T) {
			want, err := Parse(inner)
			if err != nil {
				t.Fatalf("Parse(inner) returned error: %v", err)
			}
			for _, wrapped := range []string{
				"```json\n" + inner + "\n```",
				"```\n" + inner + "\n```",
				"Sure:\n```json\n" + inner + "\n```\nDone.",
			} {
				got, err := Parse(wrapped)
				if err != nil {
					t.Fatalf("Parse(%q) returned error: %v", wrapped, err)
				}
				if !bytes.Equal(got, want) {
					t.Fatalf("got %s, want %s", got, want)
				}
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"whitespace":     "   \n\t",
		"prose":          "I could not read the document.",
		"truncated":      `{"courseTitle": "Algebra`,
		"empty fence":    "```json\n```",
		"trailing junk":  `{"a": 1} and more`,
		"fenced garbage": "```\nnot json\n```",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(input)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
			if got != nil {
				t.Fatalf("expected no partial result, got %s", got)
			}
		})
	}
}

func TestParseOtherLanguageFenceFallsBackToWholeText(t *testing.T) {
	if _, err := Parse("```python\nprint(1)\n```"); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestParseDeterministic(t *testing.T) {
	input := "```json\n{\"b\": [1, 2], \"a\": {\"c\": null}}\n```"
	first, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Parse(input)
		if err != nil || !bytes.Equal(first, again) {
			t.Fatalf("run %d differs: %s vs %s (%v)", i, first, again, err)
		}
	}
}

func TestDecodeShapeMismatch(t *testing.T) {
	var out struct {
		Items []string `json:"items"`
	}
	err := Decode(`{"items": "not-a-list"}`, &out)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}

	if err := Decode("```json\n{\"items\": [\"a\", \"b\"]}\n```", &out); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(out.Items) != 2 || out.Items[1] != "b" {
		t.Fatalf("unexpected decode result: %+v", out)
	}
}
