// Package extract recovers JSON values from free-form model replies.
//
// A reply is first parsed as-is. When that fails, the text is scanned for an opening delimiter
// and the bracket depth is tracked (string literals and escapes included) until it returns to
// zero; that slice is parsed. Every opening delimiter is tried in order, so leading prose such as
// "Voici le plan: [...] merci" and stray closing characters after the value are both tolerated.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rickchristie/chefbot"
)

// Delimiters is the opening/closing pair that bounds the expected value.
type Delimiters struct {
	Open  byte
	Close byte
}

var (
	// Brackets bounds a JSON array.
	Brackets = Delimiters{Open: '[', Close: ']'}

	// Braces bounds a JSON object.
	Braces = Delimiters{Open: '{', Close: '}'}
)

// Value parses text as JSON, falling back to the first delimited slice that parses.
// Errors wrap chefbot.ErrStructuredParse.
func Value(text string, d Delimiters) (any, error) {
	raw, err := Raw(text, d)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", chefbot.ErrStructuredParse, err)
	}
	return v, nil
}

// Array is Value with [Brackets], requiring the result to be a JSON array.
func Array(text string) ([]any, error) {
	v, err := Value(text, Brackets)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON array, got %T", chefbot.ErrStructuredParse, v)
	}
	return list, nil
}

// Object is Value with [Braces], requiring the result to be a JSON object.
func Object(text string) (map[string]any, error) {
	v, err := Value(text, Braces)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object, got %T", chefbot.ErrStructuredParse, v)
	}
	return obj, nil
}

// Decode extracts the delimited value and unmarshals it into dst.
func Decode(text string, d Delimiters, dst any) error {
	raw, err := Raw(text, d)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", chefbot.ErrStructuredParse, err)
	}
	return nil
}

// Raw returns the JSON bytes Value would parse: the whole trimmed text when it is valid JSON,
// otherwise the first balanced slice starting at d.Open that is valid JSON.
func Raw(text string, d Delimiters) ([]byte, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty text", chefbot.ErrStructuredParse)
	}
	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}

	found := false
	for start := strings.IndexByte(text, d.Open); start >= 0; {
		found = true
		if end, ok := scan(text, start); ok {
			candidate := []byte(text[start : end+1])
			if json.Valid(candidate) {
				return candidate, nil
			}
		}
		next := strings.IndexByte(text[start+1:], d.Open)
		if next < 0 {
			break
		}
		start += next + 1
	}

	if !found {
		return nil, fmt.Errorf("%w: no %q found", chefbot.ErrStructuredParse, d.Open)
	}
	return nil, fmt.Errorf("%w: no valid JSON between %q and %q", chefbot.ErrStructuredParse,
		d.Open, d.Close)
}

// scan walks text from start, where text[start] opens a bracket, and returns the index at which
// the nesting depth returns to zero. Mismatched closers and unterminated values report false.
func scan(text string, start int) (int, bool) {
	var (
		stack    []byte
		inString bool
		escaped  bool
	)
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			stack = append(stack, ']')
		case '{':
			stack = append(stack, '}')
		case ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
