package common

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")

// JSONCandidates lists the substrings of a model reply worth trying as JSON,
// in preference order: the body of the first ```json fence, then the span
// from the first '{' to the last '}'. Either may be missing.
func JSONCandidates(response string) []string {
	var out []string
	if m := fencedJSON.FindStringSubmatch(response); m != nil {
		out = append(out, m[1])
	}
	start := strings.IndexByte(response, '{')
	end := strings.LastIndexByte(response, '}')
	if start != -1 && end > start {
		span := response[start : end+1]
		if len(out) == 0 || out[0] != span {
			out = append(out, span)
		}
	}
	return out
}

// ParseJSON cleans and unmarshals a model reply into a type T.
// It handles common LLM quirks like surrounding markdown or extra text;
// candidates are tried in JSONCandidates order and the first that decodes
// wins.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	candidates := JSONCandidates(response)
	if len(candidates) == 0 {
		return zero, fmt.Errorf("no JSON object found in response (missing '{')")
	}

	var lastErr error
	for _, candidate := range candidates {
		var result T
		if err := json.Unmarshal([]byte(candidate), &result); err != nil {
			lastErr = fmt.Errorf("failed to unmarshal JSON: %w", err)
			continue
		}
		return result, nil
	}

	return zero, lastErr
}
