package social

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/qpkv/cmd/util"
	"github.com/ValentinKolb/qpkv/lib/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	userGetCmd = &cobra.Command{
		Use:   "get [id]",
		Short: "Reads a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args...)
			if err != nil {
				return err
			}
			user, found, err := tables.GetUser(ids[0])
			if err != nil {
				return err
			}
			if !found {
				fmt.Printf("user=%d, found=false\n", ids[0])
				return nil
			}
			fmt.Printf("user=%d, found=true, name=%s\n", ids[0], user.Name)
			return nil
		},
	}
	userPutCmd = &cobra.Command{
		Use:   "put [id] [name]",
		Short: "Stores a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[0])
			if err != nil {
				return err
			}
			if err := tables.PutUser(ids[0], model.User{Name: args[1]}); err != nil {
				return err
			}
			fmt.Println("user stored successfully")
			return nil
		},
	}

	tweetPostCmd = &cobra.Command{
		Use:   "post [user] [text]",
		Short: "Posts a tweet, the timestamp defaults to now (unix seconds)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[0])
			if err != nil {
				return err
			}
			ts := viper.GetUint32("at")
			if ts == 0 {
				ts = uint32(time.Now().Unix())
			}
			if err := tables.PutTweet(ids[0], ts, model.Tweet{Text: args[1]}); err != nil {
				return err
			}
			fmt.Printf("tweet %d:%d posted successfully\n", ids[0], ts)
			return nil
		},
	}
	tweetGetCmd = &cobra.Command{
		Use:   "get [user] [timestamp]",
		Short: "Reads a single tweet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args...)
			if err != nil {
				return err
			}
			tweet, found, err := tables.GetTweet(ids[0], ids[1])
			if err != nil {
				return err
			}
			if !found {
				fmt.Printf("tweet=%d:%d, found=false\n", ids[0], ids[1])
				return nil
			}
			fmt.Printf("tweet=%d:%d, found=true, text=%s\n", ids[0], ids[1], tweet.Text)
			return nil
		},
	}
	tweetListCmd = &cobra.Command{
		Use:   "list [user]",
		Short: "Lists the tweets of a user, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args...)
			if err != nil {
				return err
			}
			entries, err := tables.ListTweets(ids[0], viper.GetUint32("since"), viper.GetInt("limit"), !viper.GetBool("oldest-first"))
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%s\t%s\n", time.Unix(int64(e.Key.Timestamp), 0).UTC().Format(time.RFC3339), e.Tweet.Text)
			}
			return nil
		},
	}

	followAddCmd = &cobra.Command{
		Use:   "add [source] [destination]",
		Short: "Lets source follow destination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args...)
			if err != nil {
				return err
			}
			if err := tables.Follow(ids[0], ids[1]); err != nil {
				return err
			}
			fmt.Println("follow stored successfully")
			return nil
		},
	}
	followCheckCmd = &cobra.Command{
		Use:   "check [source] [destination]",
		Short: "Checks if source follows destination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args...)
			if err != nil {
				return err
			}
			ok, err := tables.IsFollowing(ids[0], ids[1])
			if err != nil {
				return err
			}
			fmt.Printf("source=%d, destination=%d, following=%t\n", ids[0], ids[1], ok)
			return nil
		},
	}
	followListCmd = &cobra.Command{
		Use:   "list [source]",
		Short: "Lists the ids followed by source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args...)
			if err != nil {
				return err
			}
			following, err := tables.ListFollowing(ids[0], viper.GetInt("limit"))
			if err != nil {
				return err
			}
			for _, id := range following {
				fmt.Println(id)
			}
			return nil
		},
	}
)

func init() {
	key := "at"
	tweetPostCmd.Flags().Uint32(key, 0, util.WrapString("Timestamp of the tweet in unix seconds (default now)"))

	key = "since"
	tweetListCmd.Flags().Uint32(key, 0, util.WrapString("Only list tweets with a timestamp >= since (unix seconds)"))
	key = "limit"
	tweetListCmd.Flags().Int(key, 20, util.WrapString("Maximum number of tweets (0 lists all)"))
	key = "oldest-first"
	tweetListCmd.Flags().Bool(key, false, util.WrapString("List the oldest tweets first"))

	key = "limit"
	followListCmd.Flags().Int(key, 0, util.WrapString("Maximum number of ids (0 lists all)"))
}
