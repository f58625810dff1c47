// Package table holds the registry of table identifiers known to the client.
//
// A table id is a key.Key whose bytes are the ASCII table name, left-justified
// and padded with spaces to exactly key.Size bytes (e.g. "users   ").
package table

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ValentinKolb/qpkv/lib/key"
)

// ErrInvalidName is returned for table names that can not be packed into a table id
var ErrInvalidName = errors.New("invalid table name")

var (
	// Users stores one model.User per key.UserKey
	Users = mustID("users")
	// Tweets stores one model.Tweet per key.TweetKey
	Tweets = mustID("tweets")
	// Follows stores one edge per key.FollowKey
	Follows = mustID("follows")
)

// registry is the read only lookup table of all known tables by name
var registry = map[string]key.Key{
	"users":   Users,
	"tweets":  Tweets,
	"follows": Follows,
}

// NewID packs a table name into a table id.
// The name must be 1 to key.Size printable ASCII characters without spaces.
func NewID(name string) (key.Key, error) {
	var id key.Key
	if len(name) == 0 || len(name) > key.Size {
		return id, fmt.Errorf("%w: %q must be 1 to %d bytes long", ErrInvalidName, name, key.Size)
	}
	for i := 0; i < len(name); i++ {
		if name[i] <= ' ' || name[i] > '~' {
			return id, fmt.Errorf("%w: %q contains a non printable or non ASCII byte", ErrInvalidName, name)
		}
	}
	copy(id[:], name)
	for i := len(name); i < key.Size; i++ {
		id[i] = ' '
	}
	return id, nil
}

// Name unpacks the table name from a table id by trimming the padding
func Name(id key.Key) string {
	return strings.TrimRight(string(id[:]), " ")
}

// Lookup returns the id of a known table
func Lookup(name string) (key.Key, bool) {
	id, ok := registry[name]
	return id, ok
}

// Names returns the names of all known tables in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mustID(name string) key.Key {
	id, err := NewID(name)
	if err != nil {
		panic(err)
	}
	return id
}
