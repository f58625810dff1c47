package key

import "encoding/binary"

// TypedKey is a table specific interpretation of a Key
type TypedKey interface {
	// Key packs the typed key into the opaque key space
	Key() Key
}

// UserKey addresses a row in the users table.
// Layout: bytes 0..4 user id (big-endian), bytes 4..8 zero.
type UserKey struct {
	UserID uint32
}

// Key implements TypedKey
func (u UserKey) Key() Key {
	var k Key
	binary.BigEndian.PutUint32(k[0:4], u.UserID)
	return k
}

// DecodeUserKey unpacks a key read from the users table
func DecodeUserKey(k Key) UserKey {
	return UserKey{UserID: binary.BigEndian.Uint32(k[0:4])}
}

// TweetKey addresses a row in the tweets table.
// Layout: bytes 0..4 user id, bytes 4..8 timestamp (both big-endian).
type TweetKey struct {
	UserID    uint32
	Timestamp uint32
}

// Key implements TypedKey
func (t TweetKey) Key() Key {
	return packPair(t.UserID, t.Timestamp)
}

// DecodeTweetKey unpacks a key read from the tweets table
func DecodeTweetKey(k Key) TweetKey {
	userID, timestamp := unpackPair(k)
	return TweetKey{UserID: userID, Timestamp: timestamp}
}

// FollowKey addresses a row in the follows table.
// Layout: bytes 0..4 source user id, bytes 4..8 destination user id (both big-endian).
type FollowKey struct {
	SourceID      uint32
	DestinationID uint32
}

// Key implements TypedKey
func (f FollowKey) Key() Key {
	return packPair(f.SourceID, f.DestinationID)
}

// DecodeFollowKey unpacks a key read from the follows table
func DecodeFollowKey(k Key) FollowKey {
	src, dst := unpackPair(k)
	return FollowKey{SourceID: src, DestinationID: dst}
}

func packPair(hi, lo uint32) Key {
	var k Key
	binary.BigEndian.PutUint32(k[0:4], hi)
	binary.BigEndian.PutUint32(k[4:8], lo)
	return k
}

func unpackPair(k Key) (hi, lo uint32) {
	return binary.BigEndian.Uint32(k[0:4]), binary.BigEndian.Uint32(k[4:8])
}

// PrefixRange returns the first and the last key whose leading four bytes equal prefix.
// Every tweet of a user and every follow edge of a source user lies inside this range.
func PrefixRange(prefix uint32) (first, last Key) {
	return packPair(prefix, 0), packPair(prefix, ^uint32(0))
}

// HasPrefix reports whether the leading four bytes of k equal prefix
func (k Key) HasPrefix(prefix uint32) bool {
	return binary.BigEndian.Uint32(k[0:4]) == prefix
}
