// Package key implements the fixed-width key space of the store.
//
// Every item in every table is addressed by an 8 byte opaque Key. The store
// itself does not know what the bytes mean; the meaning is defined by the
// table the key belongs to. This package provides:
//
//   - Key: the opaque 8 byte value exchanged with the store, including its
//     16 character hex text form used on the wire
//   - UserKey, TweetKey, FollowKey: typed composite keys for the users, tweets
//     and follows tables, packed big-endian so that the byte order of the
//     packed Key equals the numeric order of the tuple
//   - Compare, Next, Prev: ordering helpers used for range scans
//
// Decoding a Key into a typed key never fails, but the result is only
// meaningful if the Key was read from the matching table. The codec does not
// try to detect which table a Key belongs to, callers must pair a table id
// with the correct typed key.
package key
