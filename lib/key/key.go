package key

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Size is the number of raw bytes of a Key
const Size = 8

// TextSize is the number of hex characters of the text form of a Key
const TextSize = Size * 2

// ErrInvalidKeyText is returned when the text form of a key can not be decoded
var ErrInvalidKeyText = errors.New("invalid key text")

// Key is the opaque 8 byte key used by the store.
// It is a value type, equality and hashing are byte-wise.
type Key [Size]byte

// Min is the smallest possible key (all bytes zero)
var Min = Key{}

// Max is the largest possible key (all bytes 0xFF)
var Max = Key{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// FromBytes creates a Key from a byte slice which must be exactly Size bytes long
func FromBytes(b []byte) (Key, error) {
	var k Key
	if len(b) != Size {
		return k, fmt.Errorf("key must be %d bytes, got %d", Size, len(b))
	}
	copy(k[:], b)
	return k, nil
}

// Parse decodes the hex text form of a key.
// Upper and lower case hex digits are accepted, the text must be exactly TextSize characters long.
func Parse(text string) (Key, error) {
	var k Key
	if len(text) != TextSize {
		return k, fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidKeyText, TextSize, len(text))
	}
	if _, err := hex.Decode(k[:], []byte(text)); err != nil {
		return Key{}, fmt.Errorf("%w: %q: %v", ErrInvalidKeyText, text, err)
	}
	return k, nil
}

// String returns the upper case hex text form of the key
func (k Key) String() string {
	return strings.ToUpper(hex.EncodeToString(k[:]))
}

// Bytes returns a copy of the raw key bytes
func (k Key) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, k[:])
	return b
}

// MarshalText implements encoding.TextMarshaler.
// This makes a Key serialize as a 16 character upper case hex string in JSON.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Compare compares two keys lexicographically.
// The result is -1 if a < b, 0 if a == b and +1 if a > b.
func Compare(a, b Key) int {
	return bytes.Compare(a[:], b[:])
}

// Less reports whether k sorts before other
func (k Key) Less(other Key) bool {
	return Compare(k, other) < 0
}

// Next returns the smallest key that is greater than k.
// The boolean is false if k is already the largest key.
func (k Key) Next() (Key, bool) {
	for i := Size - 1; i >= 0; i-- {
		if k[i] != 0xFF {
			k[i]++
			return k, true
		}
		k[i] = 0x00
	}
	return Max, false
}

// Prev returns the largest key that is smaller than k.
// The boolean is false if k is already the smallest key.
func (k Key) Prev() (Key, bool) {
	for i := Size - 1; i >= 0; i-- {
		if k[i] != 0x00 {
			k[i]--
			return k, true
		}
		k[i] = 0xFF
	}
	return Min, false
}
