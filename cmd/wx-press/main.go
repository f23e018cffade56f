// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wx-press CLI, which publishes
// markdown articles to a WeChat official account as drafts.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wx-press/internal/config"
	"github.com/pdiddy/wx-press/internal/cover"
	"github.com/pdiddy/wx-press/internal/output"
	"github.com/pdiddy/wx-press/internal/provider"
	"github.com/pdiddy/wx-press/internal/uploader"
	"github.com/pdiddy/wx-press/internal/wechat"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	flagVerbose bool
	flagRefresh bool
	flagAccount string
)

// rootCmd is the base command for the wx-press CLI.
var rootCmd = &cobra.Command{
	Use:   "wx-press <path>",
	Short: "Publish markdown articles to a WeChat official account",
	Long: `wx-press uploads markdown articles with YAML front matter as drafts to a
WeChat official account. Given a file it always uploads; given a directory it
uploads every article not yet marked published.

When the article lacks a cover image and an AI provider is configured, a cover
is generated from the article content and written beside the article before
upload.`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./wx-press.yaml or ~/.config/wx-press/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagAccount, "account", "", "account name to publish with (multi-account config files)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "structured log output instead of one-line status")
	rootCmd.Flags().BoolVarP(&flagRefresh, "refresh", "r", false, "force a fresh access token before uploading")
}

func initConfig() {
	// A local .env keeps credentials out of the shell profile. Missing
	// file is the common case and not an error.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wx-press")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wx-press"))
		}
	}

	viper.SetEnvPrefix("WX_PRESS")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// loadConfig prefers a discovered config file and falls back to the
// environment contract.
func loadConfig() (*config.Config, error) {
	if file := viper.ConfigFileUsed(); file != "" {
		return config.FromFile(file, flagAccount)
	}
	return config.FromEnvironment()
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	verbose := flagVerbose || cfg.Verbose
	var sink output.Sink
	if verbose {
		sink = output.NewLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	} else {
		sink = output.NewConsole(os.Stdout, os.Stderr)
	}

	ctx := cmd.Context()

	client, err := wechat.New(ctx, cfg.Account.AppID, cfg.Account.AppSecret)
	if err != nil {
		return err
	}
	if flagRefresh {
		if _, err := client.RefreshToken(ctx); err != nil {
			return err
		}
		sink.Infof("access token refreshed")
	}

	var gen cover.Generator
	if cfg.AI != nil {
		gen = provider.New(*cfg.AI)
	}
	covers := &cover.Resolver{Gen: gen, Out: sink}

	up := &uploader.Uploader{
		Publisher:    client,
		Covers:       covers,
		Out:          sink,
		DefaultTheme: cfg.DefaultTheme,
		DefaultCode:  cfg.DefaultCode,
	}

	path := args[0]
	isDir, err := uploader.Stat(path)
	if err != nil {
		return err
	}
	if isDir {
		_, err := up.ProcessDirectory(ctx, path)
		return err
	}
	return up.UploadFile(ctx, path, true)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
