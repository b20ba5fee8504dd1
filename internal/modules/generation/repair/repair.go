// Package repair recovers structured records from loosely formatted
// generative output: fenced JSON, JSON surrounded by prose, wrapper
// objects, bare objects and human-style numbered lists.
package repair

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Records is a recovered JSON array, one raw message per element.
type Records []json.RawMessage

// Options controls which recovery passes run.
type Options struct {
	// WrapperKeys are checked in order when the payload is an object.
	WrapperKeys []string
	// BruteForce tries every [..] span when the cheap passes fail.
	BruteForce bool
	// WrapSingle, when set, promotes a lone object to a one-element array
	// if it returns true for that object.
	WrapSingle func(obj map[string]json.RawMessage) bool
}

var fenceRE = regexp.MustCompile("(?i)```[a-z]*")

// maxScanPositions bounds the brute-force pass on very large responses.
const maxScanPositions = 256

// StripFences removes code-fence markers and trims.
func StripFences(raw string) string {
	return strings.TrimSpace(fenceRE.ReplaceAllString(raw, ""))
}

// ToArray returns the first array it can recover from raw, or nil when
// raw holds no structured data.
func ToArray(raw string, opts Options) Records {
	text := StripFences(raw)
	if text == "" {
		return nil
	}

	var lone map[string]json.RawMessage

	if v, ok := decode(text); ok {
		switch {
		case isArray(v):
			return split(v)
		case isObject(v):
			obj := asObject(v)
			if arr := fromWrapper(obj, opts.WrapperKeys); arr != nil {
				return arr
			}
			lone = obj
		}
	}

	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		if v, ok := decode(text[start : end+1]); ok && isArray(v) {
			if arr := split(v); allObjects(arr) {
				return arr
			}
		}
	}

	if opts.BruteForce {
		if arr := bruteForce(text); arr != nil {
			return arr
		}
	}

	if lone == nil {
		if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
			if v, ok := decode(text[start : end+1]); ok && isObject(v) {
				lone = asObject(v)
				if arr := fromWrapper(lone, opts.WrapperKeys); arr != nil {
					return arr
				}
			}
		}
	}
	if lone != nil && opts.WrapSingle != nil && opts.WrapSingle(lone) {
		b, err := json.Marshal(lone)
		if err == nil {
			return Records{b}
		}
	}
	return nil
}

func decode(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !json.Valid([]byte(s)) {
		return nil, false
	}
	return json.RawMessage(s), true
}

func isArray(v json.RawMessage) bool {
	b := bytes.TrimSpace(v)
	return len(b) > 0 && b[0] == '['
}

func isObject(v json.RawMessage) bool {
	b := bytes.TrimSpace(v)
	return len(b) > 0 && b[0] == '{'
}

func asObject(v json.RawMessage) map[string]json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(v, &obj); err != nil {
		return nil
	}
	return obj
}

func split(v json.RawMessage) Records {
	var out []json.RawMessage
	if err := json.Unmarshal(v, &out); err != nil {
		return nil
	}
	if out == nil {
		out = []json.RawMessage{}
	}
	return Records(out)
}

func fromWrapper(obj map[string]json.RawMessage, keys []string) Records {
	for _, k := range keys {
		if v, ok := obj[k]; ok && isArray(v) {
			return split(v)
		}
	}
	return nil
}

// bruteForce tries every '[' from the left against every ']' from the
// right and keeps the first span that decodes to an array of objects.
func bruteForce(text string) Records {
	opens := firstPositions(text, '[')
	closes := lastPositions(text, ']')
	for _, i := range opens {
		for k := len(closes) - 1; k >= 0; k-- {
			j := closes[k]
			if j <= i {
				break
			}
			v, ok := decode(text[i : j+1])
			if !ok || !isArray(v) {
				continue
			}
			if arr := split(v); hasObject(arr) {
				return arr
			}
		}
	}
	return nil
}

func firstPositions(s string, c byte) []int {
	var out []int
	for i := 0; i < len(s) && len(out) < maxScanPositions; i++ {
		if s[i] == c {
			out = append(out, i)
		}
	}
	return out
}

// lastPositions returns up to maxScanPositions trailing indexes of c, ascending.
func lastPositions(s string, c byte) []int {
	var rev []int
	for i := len(s) - 1; i >= 0 && len(rev) < maxScanPositions; i-- {
		if s[i] == c {
			rev = append(rev, i)
		}
	}
	out := make([]int, len(rev))
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	return out
}

// allObjects rejects spans like ["a","b"] lifted out of a surrounding object.
func allObjects(arr Records) bool {
	if arr == nil {
		return false
	}
	for _, r := range arr {
		if !isObject(r) {
			return false
		}
	}
	return true
}

func hasObject(arr Records) bool {
	for _, r := range arr {
		if isObject(r) {
			return true
		}
	}
	return false
}
