package script

import (
	"encoding/json"
	"fmt"
)

// Body converts a handler result into response bytes. nil becomes an empty
// body, strings and byte slices are written as-is, and any other value is
// encoded as JSON.
func Body(v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, fmt.Errorf("encode handler result: %w", err)
		}
		return b, nil
	}
}
