/*
Command escrowd runs a local escrow ledger.

State is kept in the home directory. Every submitted transaction is
executed in its own block and committed immediately, so the ledger can be
driven from the command line without a consensus engine. Use the start
command to serve the same application over ABCI instead.
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iov-one/ledger/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	flagHome     = "home"
	flagLogLevel = "log_level"
	flagDebug    = "debug"
)

var rootCmd = &cobra.Command{
	Use:           "escrowd",
	Short:         "Non-custodial two-party escrow ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".escrowd")
	rootCmd.PersistentFlags().String(flagHome, defaultHome, "directory to store files under")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "log level: debug, info, error or none")
	rootCmd.PersistentFlags().Bool(flagDebug, false, "return full error details in results")

	rootCmd.AddCommand(
		initCmd(),
		keysCmd(),
		makeOfferCmd(),
		takeOfferCmd(),
		cancelOfferCmd(),
		offersCmd(),
		balanceCmd(),
		startCmd(),
	)
}

// Config is the process configuration shared by all commands. Values come
// from flags, ESCROWD_* environment variables and an optional config.yaml
// file in the home directory, in that order of precedence.
type Config struct {
	Home     string `mapstructure:"home"`
	LogLevel string `mapstructure:"log_level"`
	Debug    bool   `mapstructure:"debug"`
}

var config Config

func loadConfig(cmd *cobra.Command) error {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	v.SetEnvPrefix("ESCROWD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString(flagHome))
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "read config")
		}
	}
	if err := v.Unmarshal(&config); err != nil {
		return errors.Wrap(err, "decode config")
	}
	return nil
}
