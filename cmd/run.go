package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examcoach/internal/app"
	"github.com/abhisek/examcoach/internal/client"
	"github.com/abhisek/examcoach/internal/logging"
)

// runApp connects to the server and launches the TUI. Logs go to a file,
// or nowhere, so they never draw over the terminal UI.
func runApp(cmd *cobra.Command) error {
	cfg := loadConfig(cmd)
	if err := cfg.ValidateClient(); err != nil {
		return err
	}

	if cfg.Log.File != "" {
		if err := logging.EnableFileLogging(cfg.Log.File, logging.ParseLevel(cfg.Log.Level)); err != nil {
			return fmt.Errorf("enable logging: %w", err)
		}
		defer logging.Close()
	}

	c, err := client.New(cfg.Client.ServerURL, client.WithTimeout(cfg.Client.Timeout))
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	return app.Run(app.Options{
		Client: c,
		Server: cfg.Client.ServerURL,
	})
}
