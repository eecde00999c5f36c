package cmd

import (
	"fmt"

	"github.com/sharebox/sharebox/internal/cli/api"
	"github.com/sharebox/sharebox/internal/cli/output"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"usage", "df"},
	Short:   "Show storage usage for your files",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.Usage]
		if err := apiClient.Get("/files/usage", nil, &resp); err != nil {
			return fmt.Errorf("fetching usage: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}

		output.Usage(resp.Data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
