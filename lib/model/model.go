// Package model defines the values stored in the item text of each table.
// Values are JSON documents, the store treats them as opaque text.
package model

import (
	"encoding/json"
	"fmt"
)

// User is the value stored in the users table
type User struct {
	Name string `json:"name"`
}

// Tweet is the value stored in the tweets table
type Tweet struct {
	Text string `json:"text"`
}

// FollowMarker is the value stored for every edge in the follows table.
// Only the presence of the key carries meaning.
const FollowMarker = "{}"

// Encode serializes a value into item text
func Encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}
	return string(data), nil
}

// Decode parses item text into v
func Decode(text string, v any) error {
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("failed to decode value %q: %w", text, err)
	}
	return nil
}
