package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/optable/otlib/pkg/log"
	"github.com/optable/otlib/pkg/ot"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultProtocol = "iknp"
	defaultHost     = "127.0.0.1"
	defaultPort     = 6667
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "otlib",
	Short:         "Run oblivious transfer between two parties",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/otlib/config.yaml)")
	rootCmd.PersistentFlags().StringP("protocol", "p", defaultProtocol, "OT protocol (np,iknp,pvw)")
	rootCmd.PersistentFlags().String("kdf", "blake3", "pad derivation (blake3,blake2b,sha3,aes)")
	rootCmd.PersistentFlags().String("group", "modp1024", "base OT group (modp1024,ristretto255)")
	rootCmd.PersistentFlags().IntP("security", "k", 80, "number of base OTs behind OT extension")
	rootCmd.PersistentFlags().String("host", defaultHost, "address the receiver listens on and the sender dials")
	rootCmd.PersistentFlags().Int("port", defaultPort, "port the receiver listens on and the sender dials")
	rootCmd.PersistentFlags().IntP("verbose", "v", 0, "Verbosity level, 0 for info level messages, 1 for protocol stages and 2 for traces")
	for _, name := range []string{"protocol", "kdf", "group", "security", "host", "port", "verbose"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(sendCmd, receiveCmd, benchCmd)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "otlib"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("otlib")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configuredProtocol returns the OT protocol selected by flag, env or config.
func configuredProtocol() (ot.Protocol, error) {
	return ot.ParseProtocol(viper.GetString("protocol"))
}

// sessionOptions returns the session configuration shared by every command.
func sessionOptions(logger logr.Logger) []ot.Option {
	return []ot.Option{
		ot.WithKeyDerivation(viper.GetString("kdf")),
		ot.WithGroup(viper.GetString("group")),
		ot.WithSecurityParameter(viper.GetInt("security")),
		ot.WithLogger(logger),
	}
}

// commandContext returns a context carrying the configured logger that is
// canceled on SIGINT or SIGTERM.
func commandContext() (context.Context, context.CancelFunc, logr.Logger) {
	logger := log.GetLogger(viper.GetInt("verbose"))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return log.ContextWithLogger(ctx, logger), stop, logger
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "otlib:", err)
		os.Exit(1)
	}
}
