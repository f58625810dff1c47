package serve

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	cmdUtil "github.com/ValentinKolb/qpkv/cmd/util"
	"github.com/ValentinKolb/qpkv/lib/store"
	"github.com/ValentinKolb/qpkv/lib/store/mstore"
	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/ValentinKolb/qpkv/rpc/serializer"
	"github.com/ValentinKolb/qpkv/rpc/server"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	deadlockEvery  uint64
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start a local reference peer with an in-memory store",
		Long:    `Start a local reference peer that speaks the line protocol of the table store and keeps all tables in memory. The configuration can be set via command line flags or environment variables. The format of the environment variables is QPKV_<flag> (e.g. QPKV_ENDPOINT=127.0.0.1:9000)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "127.0.0.1:8124", cmdUtil.WrapString("The address on which the peer will listen (e.g. 127.0.0.1:8124, /tmp/qpkv.sock, ...)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 300, cmdUtil.WrapString("Idle timeout of a connection in seconds (0 disables the timeout)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "deadlock-every"
	ServeCmd.PersistentFlags().Uint64(key, 0, cmdUtil.WrapString("Answer every n-th request with a deadlock error, used to test client retries (0 disables it)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	deadlockEvery = viper.GetUint64("deadlock-every")

	return common.InitLoggers(serveCmdConfig.LogLevel)
}

// run starts the reference peer and blocks until it receives SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {

	// Parse the transport
	t, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	var s store.ITableStore = mstore.NewMemoryStore()
	if deadlockEvery > 0 {
		s = server.NewDeadlockInjector(s, deadlockEvery)
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		serializer.NewJSONSerializer(),
		s,
	)

	if err := serv.Listen(); err != nil {
		return err
	}

	// stop on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		server.Logger.Infof("received %s, shutting down", sig)
		_ = serv.Close()
	}()

	fmt.Printf("reference peer listening on %s\n", serv.Addr())
	return serv.Serve()
}

// initConfig reads in ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("qpkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
