package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/qpkv/cmd/kv"
	"github.com/ValentinKolb/qpkv/cmd/serve"
	"github.com/ValentinKolb/qpkv/cmd/social"
	"github.com/ValentinKolb/qpkv/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "qpkv",
		Short: "client for the qp table store",
		Long: fmt.Sprintf(`qpkv (v%s)

A client for a remote table store. Items are addressed by a table id and an
8 byte key and are exchanged as newline delimited JSON over a stream socket.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of qpkv",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("qpkv v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(social.UserCommands)
	RootCmd.AddCommand(social.TweetCommands)
	RootCmd.AddCommand(social.FollowCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
