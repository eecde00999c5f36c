package cmd

import (
	"fmt"

	"github.com/sharebox/sharebox/internal/cli/api"
	"github.com/sharebox/sharebox/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	flagKind    string
	flagMessage string
)

var contributeCmd = &cobra.Command{
	Use:   "contribute <id|name>",
	Short: "Record a contribution against a file",
	Long: `Record an upload, share, or comment event for a file.

  sharebox contribute report.pdf --kind comment -m "reviewed"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		fileID, err := resolveFileID(apiClient, args[0])
		if err != nil {
			return err
		}

		body := map[string]interface{}{"fileId": fileID, "kind": flagKind}
		if flagMessage != "" {
			body["message"] = flagMessage
		}

		var resp api.Response[api.Contribution]
		if err := apiClient.Post("/contributions", body, &resp); err != nil {
			return fmt.Errorf("recording contribution: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Printf("Recorded %s on %s\n", resp.Data.Kind, args[0])
		return nil
	},
}

var contributionsCmd = &cobra.Command{
	Use:   "contributions",
	Short: "List your contributions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[[]api.Contribution]
		if err := apiClient.Get("/contributions", nil, &resp); err != nil {
			return fmt.Errorf("listing contributions: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.ContributionTable(resp.Data)
		return nil
	},
}

func init() {
	contributeCmd.Flags().StringVarP(&flagKind, "kind", "k", "comment", "Contribution kind: upload, share, comment")
	contributeCmd.Flags().StringVarP(&flagMessage, "message", "m", "", "Optional message")
	rootCmd.AddCommand(contributeCmd, contributionsCmd)
}
