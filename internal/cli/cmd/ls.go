package cmd

import (
	"fmt"
	"net/url"

	"github.com/sharebox/sharebox/internal/cli/api"
	"github.com/sharebox/sharebox/internal/cli/output"
	"github.com/spf13/cobra"
)

var flagQuery string

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List your files",
	Long: `List every file you own, public and private, newest first.

  sharebox ls
  sharebox ls -q report      Filter by name`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		return listFiles("/files", false)
	},
}

var publicCmd = &cobra.Command{
	Use:   "public",
	Short: "List public files from every user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listFiles("/files/public", true)
	},
}

func init() {
	for _, c := range []*cobra.Command{lsCmd, publicCmd} {
		c.Flags().StringVarP(&flagQuery, "query", "q", "", "Case-insensitive name filter")
		rootCmd.AddCommand(c)
	}
}

func listFiles(path string, showUploader bool) error {
	params := url.Values{}
	if flagQuery != "" {
		params.Set("q", flagQuery)
	}

	var resp api.Response[[]api.File]
	if err := apiClient.Get(path, params, &resp); err != nil {
		return fmt.Errorf("listing files: %w", err)
	}

	if flagJSON {
		output.JSON(resp.Data)
		return nil
	}

	output.FileTable(resp.Data, showUploader)
	return nil
}
