package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sharebox/sharebox/internal/cli/api"
	"github.com/spf13/cobra"
)

var flagForce bool

var rmCmd = &cobra.Command{
	Use:   "rm <id|name>",
	Short: "Delete one of your files",
	Long: `Delete a file and its stored content. This cannot be undone.

  sharebox rm old-report.pdf
  sharebox rm <uuid> --force          Skip confirmation`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		fileID, err := resolveFileID(apiClient, args[0])
		if err != nil {
			return err
		}

		var infoResp api.Response[api.File]
		if err := apiClient.Get("/files/"+fileID, nil, &infoResp); err != nil {
			return fmt.Errorf("fetching file info: %w", err)
		}
		f := infoResp.Data

		if !flagForce {
			fmt.Printf("Delete %q? This cannot be undone. [y/N] ", f.Name)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			answer = strings.TrimSpace(strings.ToLower(answer))
			if answer != "y" && answer != "yes" {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := apiClient.Delete("/files/"+fileID, nil); err != nil {
			return fmt.Errorf("deleting: %w", err)
		}

		fmt.Printf("Deleted: %s\n", f.Name)
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Skip confirmation prompt")
	rootCmd.AddCommand(rmCmd)
}
