package social

import (
	"fmt"
	"strconv"

	"github.com/ValentinKolb/qpkv/cmd/util"
	libSocial "github.com/ValentinKolb/qpkv/lib/social"
	"github.com/ValentinKolb/qpkv/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcClient *client.RPCClient
	tables    *libSocial.Social

	// UserCommands represents the users command group
	UserCommands = &cobra.Command{
		Use:                "user",
		Short:              "Read and write users",
		PersistentPreRunE:  setupSocialClient,
		PersistentPostRunE: closeSocialClient,
	}

	// TweetCommands represents the tweets command group
	TweetCommands = &cobra.Command{
		Use:                "tweet",
		Short:              "Post and list tweets",
		PersistentPreRunE:  setupSocialClient,
		PersistentPostRunE: closeSocialClient,
	}

	// FollowCommands represents the follows command group
	FollowCommands = &cobra.Command{
		Use:                "follow",
		Short:              "Add and list follow edges",
		PersistentPreRunE:  setupSocialClient,
		PersistentPostRunE: closeSocialClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	for _, group := range []*cobra.Command{UserCommands, TweetCommands, FollowCommands} {
		util.SetupRPCClientFlags(group)
	}

	UserCommands.AddCommand(userGetCmd, userPutCmd)
	TweetCommands.AddCommand(tweetPostCmd, tweetGetCmd, tweetListCmd)
	FollowCommands.AddCommand(followAddCmd, followCheckCmd, followListCmd)
}

// setupSocialClient connects the client and wraps it with typed table access
func setupSocialClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := util.InitLogging(); err != nil {
		return err
	}

	var err error
	rpcClient, err = util.NewClient()
	if err != nil {
		return err
	}
	tables = libSocial.New(rpcClient, libSocial.Config{RetryCount: util.GetClientConfig().RetryCount})
	return nil
}

func closeSocialClient(_ *cobra.Command, _ []string) error {
	return util.CloseClient(rpcClient)
}

// parseIDs parses all args as unsigned 32 bit ids
func parseIDs(args ...string) ([]uint32, error) {
	ids := make([]uint32, len(args))
	for i, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: must be an unsigned 32 bit number", arg)
		}
		ids[i] = uint32(id)
	}
	return ids, nil
}
