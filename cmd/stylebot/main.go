package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thinkscotty/stylebot/internal/config"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "stylebot",
	Short: "Telegram bot that restyles news after a channel's posts",
	Long: `stylebot rewrites an article or a pasted text so that it reads like the
posts of a public Telegram channel.

Run 'stylebot run' to start the bot.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	rootCmd.SetVersionTemplate(fmt.Sprintf("stylebot %s (built %s)\n", version, buildTime))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(hashKeyCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and installs the logger it names.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLevel(cfg.Logging.Level),
	})))
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stylebot %s (built %s)\n", version, buildTime)
	},
}
