package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/examcoach/internal/config"
	"github.com/abhisek/examcoach/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "examcoach",
	Short: "Exam practice with AI marking",
	Long: "examcoach: answer past-paper questions in the terminal and get a quick summary\n" +
		"followed by detailed marking feedback.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides EXAMCOACH_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides EXAMCOACH_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file (overrides EXAMCOACH_LOG_FILE)")
	rootCmd.Flags().String("server", "", "examcoach server URL (overrides EXAMCOACH_SERVER env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies any flags the user set.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg := config.FromEnv()
	if v, _ := cmd.Flags().GetString("server"); v != "" {
		cfg.Client.ServerURL = v
	}
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Server.Addr = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Server.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-file"); v != "" {
		cfg.Log.File = v
	}
	return cfg
}

// resolveDBPath returns the database path using --db / EXAMCOACH_DB, then
// the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if p := cfg.Server.DBPath; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
