package cmd

import (
	"fmt"
	"os"

	"github.com/sharebox/sharebox/internal/cli/api"
	"github.com/sharebox/sharebox/internal/cli/config"
	"github.com/spf13/cobra"
)

var (
	flagJSON      bool
	flagServerURL string

	cfg       *config.Config
	apiClient *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "sharebox",
	Short: "sharebox CLI: upload and share files from the terminal",
	Long: `sharebox CLI lets you upload, list, download, and delete files
on a sharebox server without leaving the terminal.

Get started:
  sharebox register           Create an account
  sharebox login              Authenticate with email and password
  sharebox upload file.pdf    Upload a private file
  sharebox ls                 List your files
  sharebox public             Browse public files`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagServerURL != "" {
			cfg.ServerURL = flagServerURL
		}
		apiClient = api.NewClient(cfg.ServerURL, cfg.Token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Override server URL (default: from config or http://localhost:8080)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func requireAuth() error {
	if cfg == nil || !cfg.HasToken() {
		return fmt.Errorf("not authenticated: run \"sharebox login\" first")
	}
	return nil
}
