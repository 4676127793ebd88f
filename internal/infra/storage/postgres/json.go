package postgres

import "encoding/json"

// encodeJSON marshals a map for a jsonb column, keeping NULL for empty
// maps instead of storing "{}" noise.
func encodeJSON(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return b, nil
}
