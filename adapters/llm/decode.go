package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"adinsight/domain/core"
)

// ExtractJSON pulls a JSON document out of free-form model output. It tries a
// ```json fence, then a generic fence, then the raw response, and finally the
// outermost brace window.
func ExtractJSON(response string) (string, error) {
	if i := strings.Index(response, "```json"); i >= 0 {
		rest := response[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j]), nil
		}
	}
	if i := strings.Index(response, "```"); i >= 0 {
		rest := response[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j]), nil
		}
	}

	trimmed := strings.TrimSpace(response)
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		candidate := trimmed[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no JSON document found in response")
}

// decodeChecked extracts JSON from a response, verifies the required
// top-level keys are present, and unmarshals into out. All failures surface
// as core.ErrGenerationParse tagged with the agent name.
func decodeChecked(agent, response string, requiredKeys []string, out interface{}) error {
	raw, err := ExtractJSON(response)
	if err != nil {
		return core.NewParseError(agent, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return core.NewParseError(agent, err)
	}
	var missing []string
	for _, key := range requiredKeys {
		if _, ok := fields[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return core.NewMissingKeysError(agent, missing)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return core.NewParseError(agent, err)
	}
	return nil
}
