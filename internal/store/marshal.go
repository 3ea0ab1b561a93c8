package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalDetail renders an entry's detail map as JSON TEXT.
// Keys are sorted by encoding/json; HTML escaping is disabled so stored
// text matches the exported audit trail byte for byte.
func marshalDetail(detail map[string]any) (string, error) {
	if len(detail) == 0 {
		return "{}", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(detail); err != nil {
		return "", fmt.Errorf("marshal detail: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalDetail parses stored detail TEXT. An empty object yields nil,
// matching entries created without detail.
func unmarshalDetail(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("unmarshal detail: %w", err)
	}
	return m, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
