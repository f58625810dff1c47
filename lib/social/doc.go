// Package social provides typed access to the users, tweets and follows tables
// on top of any store.ITableStore.
//
// Keys are built with the key package: users are addressed by key.UserKey,
// tweets by key.TweetKey (user id and timestamp) and follow edges by key.FollowKey.
// Values are the JSON documents of the model package.
//
// Reads that fail with a deadlock are retried with exponential backoff and a
// small random jitter. Writes are never retried, the caller has to decide whether
// repeating a put is safe.
//
// Usage:
//
//	c, _ := client.Connect(common.DefaultEndpoint)
//	s := social.New(c, social.Config{RetryCount: 3})
//
//	_ = s.PutUser(789, model.User{Name: "Alice"})
//	user, found, err := s.GetUser(789)
//
//	tweets, err := s.ListTweets(789, 0, 20, true)
package social
