package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ValentinKolb/qpkv/lib/key"
	"github.com/ValentinKolb/qpkv/lib/table"
)

// hexPrefix marks raw keys and table ids on the command line
const hexPrefix = "0x"

// ParseTable resolves a table given by name (users, tweets, follows) or as raw id (0x + 16 hex digits)
func ParseTable(text string) (key.Key, error) {
	if strings.HasPrefix(text, hexPrefix) {
		return key.Parse(text[len(hexPrefix):])
	}
	if id, ok := table.Lookup(text); ok {
		return id, nil
	}
	return table.NewID(text)
}

// ParseKey parses a key in the syntax of the table:
//
//	users   <user id>                 e.g. 789
//	tweets  <user id>:<timestamp>     e.g. 789:1700000000
//	follows <source id>:<dest id>     e.g. 1:2
//
// Raw keys (0x + 16 hex digits) are accepted for every table.
func ParseKey(tableID key.Key, text string) (key.Key, error) {
	if strings.HasPrefix(text, hexPrefix) {
		return key.Parse(text[len(hexPrefix):])
	}

	switch tableID {
	case table.Users:
		id, err := parseID(text)
		if err != nil {
			return key.Key{}, err
		}
		return key.UserKey{UserID: id}.Key(), nil
	case table.Tweets:
		user, ts, err := parsePair(text)
		if err != nil {
			return key.Key{}, err
		}
		return key.TweetKey{UserID: user, Timestamp: ts}.Key(), nil
	case table.Follows:
		src, dst, err := parsePair(text)
		if err != nil {
			return key.Key{}, err
		}
		return key.FollowKey{SourceID: src, DestinationID: dst}.Key(), nil
	default:
		return key.Key{}, fmt.Errorf("keys of table %q must be given as %s<16 hex digits>", table.Name(tableID), hexPrefix)
	}
}

// FormatKey renders a key in the syntax accepted by ParseKey
func FormatKey(tableID key.Key, k key.Key) string {
	switch tableID {
	case table.Users:
		if u := key.DecodeUserKey(k); u.Key() == k {
			return strconv.FormatUint(uint64(u.UserID), 10)
		}
	case table.Tweets:
		t := key.DecodeTweetKey(k)
		return fmt.Sprintf("%d:%d", t.UserID, t.Timestamp)
	case table.Follows:
		f := key.DecodeFollowKey(k)
		return fmt.Sprintf("%d:%d", f.SourceID, f.DestinationID)
	}
	return hexPrefix + k.String()
}

func parseID(text string) (uint32, error) {
	id, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be an unsigned 32 bit number", text)
	}
	return uint32(id), nil
}

func parsePair(text string) (uint32, uint32, error) {
	hi, lo, ok := strings.Cut(text, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid key %q: expected <number>:<number>", text)
	}
	a, err := parseID(hi)
	if err != nil {
		return 0, 0, err
	}
	b, err := parseID(lo)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
