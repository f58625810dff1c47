package social

import (
	"math"
	"time"

	"github.com/ValentinKolb/qpkv/lib/key"
	"github.com/ValentinKolb/qpkv/lib/model"
	"github.com/ValentinKolb/qpkv/lib/store"
	"github.com/ValentinKolb/qpkv/lib/table"
	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("social")

// pageSize is the limit of the single scan calls of list operations
const pageSize uint = 100

// Config configures the retry behaviour of reads
type Config struct {
	// RetryCount is the number of attempts of a read, values < 1 mean a single attempt
	RetryCount int
	// InitialBackoff is the wait time before the second attempt, it doubles with every attempt (default 50ms)
	InitialBackoff time.Duration
}

// TweetEntry is a tweet together with its key
type TweetEntry struct {
	Key   key.TweetKey
	Tweet model.Tweet
}

// Social provides typed access to the tables, it is safe for concurrent use
// if the underlying store is
type Social struct {
	store *retryStore
}

// New creates typed access on top of s
func New(s store.ITableStore, config Config) *Social {
	attempts := config.RetryCount
	if attempts < 1 {
		attempts = 1
	}
	backoff := config.InitialBackoff
	if backoff <= 0 {
		backoff = defaultInitialBackoff
	}

	return &Social{
		store: &retryStore{inner: s, attempts: attempts, backoff: backoff, sleep: time.Sleep},
	}
}

// --------------------------------------------------------------------------
// Users
// --------------------------------------------------------------------------

// GetUser returns the user with the given id, the boolean is false if there is no such user
func (s *Social) GetUser(id uint32) (*model.User, bool, error) {
	var user model.User
	found, err := s.get(table.Users, key.UserKey{UserID: id}, &user)
	if err != nil || !found {
		return nil, found, err
	}
	return &user, true, nil
}

// PutUser stores the user under the given id
func (s *Social) PutUser(id uint32, user model.User) error {
	return s.put(table.Users, key.UserKey{UserID: id}, user)
}

// --------------------------------------------------------------------------
// Tweets
// --------------------------------------------------------------------------

// PutTweet stores a tweet of a user at the given timestamp
func (s *Social) PutTweet(userID, timestamp uint32, tweet model.Tweet) error {
	return s.put(table.Tweets, key.TweetKey{UserID: userID, Timestamp: timestamp}, tweet)
}

// GetTweet returns a single tweet, the boolean is false if there is no such tweet
func (s *Social) GetTweet(userID, timestamp uint32) (*model.Tweet, bool, error) {
	var tweet model.Tweet
	found, err := s.get(table.Tweets, key.TweetKey{UserID: userID, Timestamp: timestamp}, &tweet)
	if err != nil || !found {
		return nil, found, err
	}
	return &tweet, true, nil
}

// ListTweets returns the tweets of a user with a timestamp >= since.
// The tweets are ordered by timestamp, newest first if requested. limit <= 0 returns all tweets.
func (s *Social) ListTweets(userID, since uint32, limit int, newestFirst bool) ([]TweetEntry, error) {
	first := key.TweetKey{UserID: userID, Timestamp: since}.Key()
	last := key.TweetKey{UserID: userID, Timestamp: math.MaxUint32}.Key()

	opts := store.ScanOptions{Start: &first, End: &last, PageSize: pageFor(limit), Max: limit}
	if newestFirst {
		opts.Start, opts.End, opts.Backward = &last, &first, true
	}

	items, err := s.scan(table.Tweets, opts)
	if err != nil {
		return nil, err
	}

	entries := make([]TweetEntry, 0, len(items))
	for _, item := range items {
		var tweet model.Tweet
		if err := model.Decode(item.Value, &tweet); err != nil {
			return nil, err
		}
		entries = append(entries, TweetEntry{Key: key.DecodeTweetKey(item.Key), Tweet: tweet})
	}
	return entries, nil
}

// --------------------------------------------------------------------------
// Follows
// --------------------------------------------------------------------------

// Follow stores the edge src -> dst
func (s *Social) Follow(src, dst uint32) error {
	item := common.Item{Key: key.FollowKey{SourceID: src, DestinationID: dst}.Key(), Value: model.FollowMarker}
	return s.store.PutItem(table.Follows, item)
}

// IsFollowing reports whether the edge src -> dst exists
func (s *Social) IsFollowing(src, dst uint32) (bool, error) {
	item, err := s.store.GetItem(table.Follows, key.FollowKey{SourceID: src, DestinationID: dst}.Key())
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

// ListFollowing returns the ids followed by src in ascending order. limit <= 0 returns all ids.
func (s *Social) ListFollowing(src uint32, limit int) ([]uint32, error) {
	first, last := key.PrefixRange(src)
	items, err := s.scan(table.Follows, store.ScanOptions{Start: &first, End: &last, PageSize: pageFor(limit), Max: limit})
	if err != nil {
		return nil, err
	}

	ids := make([]uint32, len(items))
	for i, item := range items {
		ids[i] = key.DecodeFollowKey(item.Key).DestinationID
	}
	return ids, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (s *Social) get(tableID key.Key, k key.TypedKey, v any) (bool, error) {
	item, err := s.store.GetItem(tableID, k.Key())
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}
	if err := model.Decode(item.Value, v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Social) put(tableID key.Key, k key.TypedKey, v any) error {
	value, err := model.Encode(v)
	if err != nil {
		return err
	}
	return s.store.PutItem(tableID, common.Item{Key: k.Key(), Value: value})
}

func (s *Social) scan(tableID key.Key, opts store.ScanOptions) ([]common.Item, error) {
	if opts.Max < 0 {
		opts.Max = 0
	}
	return store.ScanAll(s.store, tableID, opts)
}

// pageFor returns the page size for a list operation with the given limit
func pageFor(limit int) uint {
	if limit > 0 && uint(limit) < pageSize {
		return uint(limit)
	}
	return pageSize
}
