package cmd

import (
	"fmt"

	"github.com/sharebox/sharebox/internal/cli/api"
	"github.com/sharebox/sharebox/internal/cli/output"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <id|name>",
	Short: "Show details for a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := resolveFileID(apiClient, args[0])
		if err != nil {
			return err
		}

		var resp api.Response[api.File]
		if err := apiClient.Get("/files/"+fileID, nil, &resp); err != nil {
			return fmt.Errorf("fetching file info: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}

		output.FileDetail(resp.Data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
