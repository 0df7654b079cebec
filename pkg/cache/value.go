package cache

import (
	"encoding/json"
	"fmt"
)

// DecodeValue copies an entry value into dest. Values read back from the
// redis backend arrive as raw JSON; values set in-process are live Go
// structs. Both shapes go through a JSON round trip so callers never branch
// on the backend in use.
func DecodeValue(value any, dest any) error {
	if value == nil {
		return fmt.Errorf("no cache value to decode")
	}
	raw, ok := value.(json.RawMessage)
	if !ok {
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal cache value: %w", err)
		}
		raw = b
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return nil
}
