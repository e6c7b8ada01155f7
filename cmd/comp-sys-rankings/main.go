// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the comp-sys-rankings CLI, which ranks
// institutions and authors by publications at computer systems venues.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/j-mckerracher/comp-sys-rankings/internal/logging"
	"github.com/j-mckerracher/comp-sys-rankings/internal/secrets"
	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg and logger are populated before any subcommand runs.
var (
	cfg    types.Config
	logger = zap.NewNop()
)

// rootCmd is the base command for the comp-sys-rankings CLI.
var rootCmd = &cobra.Command{
	Use:   "comp-sys-rankings",
	Short: "Rank institutions and authors by computer systems publications",
	Long: `comp-sys-rankings ranks academic institutions and their authors by
publication output at computer systems venues. Rankings can be restricted to
venues, whole research areas, and an inclusive year range.

The rank command prints a ranking; snapshot recomputes the unfiltered ranking
and stores it for distribution lookups; serve exposes the same operations
over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		l, err := logging.New(c.Log)
		if err != nil {
			return err
		}
		logger = l

		secretsDir, _ := cmd.Flags().GetString("secrets")
		envFile, _ := cmd.Flags().GetString("env-file")
		fromDir, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		fromEnv, err := secrets.LoadEnvFile(envFile)
		if err != nil {
			return err
		}
		s := secrets.Merge(fromDir, fromEnv)
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		secrets.Apply(&c, s)
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./comp-sys-rankings.yaml or ~/.config/comp-sys-rankings/config.yaml)")
	rootCmd.PersistentFlags().String("secrets", ".secrets/", "directory of secret files")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file with credentials")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	setDefaults(viper.GetViper())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("comp-sys-rankings")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "comp-sys-rankings"))
		}
	}

	viper.SetEnvPrefix("COMP_SYS_RANKINGS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
