package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/state303/tabpool"
	"github.com/state303/tabpool/internal/config"
	"github.com/state303/tabpool/internal/logging"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	configFile string
	logLevel   string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tabpool",
	Short: "Warm and probe pools of headless browser pages",
	Long: `tabpool keeps headless browser pages ready for scraping tasks.

The warm command launches a browser, preloads pages for every configured
label and probes each label's selector once, which is a quick way to check
that a preload configuration works before handing it to a scraper.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		_, err = logging.Init(logging.Config{
			Level:      cfg.Logging.Level,
			File:       cfg.Logging.File,
			MaxSize:    cfg.Logging.MaxSize,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAge:     cfg.Logging.MaxAge,
			Compress:   cfg.Logging.Compress,
		}, os.Stderr)
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		appConfig = cfg
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// logging and config are not needed to print the version
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tabpool %s (built %s)\n", Version, BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace|debug|info|warn|error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newWarmCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode logs err and maps it to the process exit status: 2 for pool errors
// the caller can act on (unknown or duplicate label, interruption), 1 otherwise.
func exitCode(err error) int {
	if tabpool.IsKnownError(err) {
		log.Warn().Err(err).Msg("tabpool stopped")
		return 2
	}
	log.Error().Err(err).Msg("tabpool failed")
	return 1
}
