// Package jsonreply extracts JSON values from free-form model replies.
package jsonreply

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrMalformedResponse = errors.New("malformed model response")

// openFence matches a ```json opener (label may share the line with the body)
// or an unlabeled ``` opener followed by a line break.
var openFence = regexp.MustCompile("(?i)```(?:json[ \\t]*\\r?\\n?|[ \\t]*\\r?\\n)")

// Parse returns the compacted JSON value found in text. Text that is already
// valid JSON is taken as is; otherwise the first fenced body that decodes wins.
func Parse(text string) (json.RawMessage, error) {
	var firstErr error
	for _, candidate := range candidates(text) {
		if candidate == "" {
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(candidate)); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return json.RawMessage(buf.Bytes()), nil
	}
	if firstErr == nil {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}
	return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, firstErr)
}

// Decode parses text and unmarshals the value into out.
func Decode(text string, out any) error {
	raw, err := Parse(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// candidates lists the whole text, then the body after the first opener cut
// at each following ``` in order. Backticks inside JSON strings make the
// early cuts invalid, so the real closing fence is reached. The uncut body
// comes last for replies whose closing fence was dropped.
func candidates(text string) []string {
	out := []string{strings.TrimSpace(text)}
	loc := openFence.FindStringIndex(text)
	if loc == nil {
		return out
	}
	body := text[loc[1]:]
	for offset := 0; ; {
		i := strings.Index(body[offset:], "```")
		if i < 0 {
			break
		}
		out = append(out, strings.TrimSpace(body[:offset+i]))
		offset += i + len("```")
	}
	return append(out, strings.TrimSpace(body))
}
