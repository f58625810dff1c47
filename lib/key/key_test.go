package key

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boundary values used for the round trip tests
var edgeValues = []uint32{0, 1, 2, 0xFF, 0x100, 789, 0x7FFFFFFF, 0x80000000, math.MaxUint32 - 1, math.MaxUint32}

func TestUserKeyRoundTrip(t *testing.T) {
	for _, id := range edgeValues {
		k := UserKey{UserID: id}
		assert.Equal(t, k, DecodeUserKey(k.Key()))
	}
}

func TestTweetKeyRoundTrip(t *testing.T) {
	for _, a := range edgeValues {
		for _, b := range edgeValues {
			k := TweetKey{UserID: a, Timestamp: b}
			assert.Equal(t, k, DecodeTweetKey(k.Key()))
		}
	}
}

func TestFollowKeyRoundTrip(t *testing.T) {
	for _, a := range edgeValues {
		for _, b := range edgeValues {
			k := FollowKey{SourceID: a, DestinationID: b}
			assert.Equal(t, k, DecodeFollowKey(k.Key()))
		}
	}
}

func TestLayout(t *testing.T) {
	tests := []struct {
		name     string
		key      TypedKey
		expected Key
	}{
		{"user 789", UserKey{UserID: 789}, Key{0x00, 0x00, 0x03, 0x15, 0, 0, 0, 0}},
		{"tweet", TweetKey{UserID: 1, Timestamp: 0x01020304}, Key{0, 0, 0, 1, 1, 2, 3, 4}},
		{"follow", FollowKey{SourceID: 0xAABBCCDD, DestinationID: 2}, Key{0xAA, 0xBB, 0xCC, 0xDD, 0, 0, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.key.Key())
		})
	}

	assert.Equal(t, "0000031500000000", UserKey{UserID: 789}.Key().String())
}

func TestTweetKeyOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randomTweetKey := func() TweetKey {
		// mix boundary values with random ones so equal user ids happen often
		pick := func() uint32 {
			if rng.Intn(2) == 0 {
				return edgeValues[rng.Intn(len(edgeValues))]
			}
			return rng.Uint32()
		}
		return TweetKey{UserID: pick(), Timestamp: pick()}
	}

	tupleLess := func(a, b TweetKey) bool {
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		return a.Timestamp < b.Timestamp
	}

	for i := 0; i < 10000; i++ {
		a, b := randomTweetKey(), randomTweetKey()
		ka, kb := a.Key(), b.Key()
		if tupleLess(a, b) {
			require.True(t, bytes.Compare(ka[:], kb[:]) < 0, "expected %v < %v", a, b)
		} else if tupleLess(b, a) {
			require.True(t, bytes.Compare(ka[:], kb[:]) > 0, "expected %v > %v", a, b)
		} else {
			require.Equal(t, ka, kb)
		}
	}
}

func TestTextForm(t *testing.T) {
	k := Key{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01, 0xab, 0xcd}

	text := k.String()
	require.Len(t, text, TextSize)
	assert.Equal(t, "DEADBEEF0001ABCD", text)
	for _, c := range text {
		assert.True(t, (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F'), "unexpected character %q", c)
	}

	for _, in := range []string{"DEADBEEF0001ABCD", "deadbeef0001abcd", "DeAdBeEf0001aBcD"} {
		parsed, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, k, parsed)
	}
}

func TestParseRejectsInvalidText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"too short", "DEADBEEF"},
		{"one short", "DEADBEEF0001ABC"},
		{"too long", "DEADBEEF0001ABCD00"},
		{"one long", "DEADBEEF0001ABCD0"},
		{"non hex", "DEADBEEF0001ABCG"},
		{"whitespace", "DEADBEEF 001ABCD"},
		{"prefix", "0xDEADBEEF0001AB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidKeyText))
		})
	}
}

func TestJSON(t *testing.T) {
	type wrapper struct {
		Key  Key  `json:"key"`
		Opt  *Key `json:"opt"`
		None *Key `json:"none"`
	}

	k := TweetKey{UserID: 7, Timestamp: 1700000000}.Key()
	data, err := json.Marshal(wrapper{Key: k, Opt: &k})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"000000076553F100","opt":"000000076553F100","none":null}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"key":"000000076553f100","opt":null}`), &w))
	assert.Equal(t, k, w.Key)
	assert.Nil(t, w.Opt)

	require.Error(t, json.Unmarshal([]byte(`{"key":"0007"}`), &w))
}

func TestNextPrev(t *testing.T) {
	next, ok := Key{0, 0, 0, 0, 0, 0, 0, 0xFF}.Next()
	require.True(t, ok)
	assert.Equal(t, Key{0, 0, 0, 0, 0, 0, 1, 0}, next)

	_, ok = Max.Next()
	assert.False(t, ok)

	prev, ok := Key{0, 0, 0, 1, 0, 0, 0, 0}.Prev()
	require.True(t, ok)
	assert.Equal(t, Key{0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF}, prev)

	_, ok = Min.Prev()
	assert.False(t, ok)

	k := TweetKey{UserID: 3, Timestamp: 10}.Key()
	n, _ := k.Next()
	p, _ := n.Prev()
	assert.Equal(t, k, p)
	assert.Equal(t, TweetKey{UserID: 3, Timestamp: 11}, DecodeTweetKey(n))
}

func TestPrefixRange(t *testing.T) {
	first, last := PrefixRange(42)
	assert.Equal(t, TweetKey{UserID: 42, Timestamp: 0}.Key(), first)
	assert.Equal(t, TweetKey{UserID: 42, Timestamp: math.MaxUint32}.Key(), last)
	assert.True(t, first.HasPrefix(42))
	assert.True(t, last.HasPrefix(42))

	after, _ := last.Next()
	assert.False(t, after.HasPrefix(42))
	assert.True(t, after.HasPrefix(43))
}

func TestFromBytes(t *testing.T) {
	k, err := FromBytes([]byte("users   "))
	require.NoError(t, err)
	assert.Equal(t, "7573657273202020", k.String())
	assert.Equal(t, []byte("users   "), k.Bytes())

	_, err = FromBytes([]byte("users"))
	require.Error(t, err)
}
