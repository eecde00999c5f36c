package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sharebox/sharebox/internal/cli/api"
	"github.com/spf13/cobra"
)

var flagOutput string

var downloadCmd = &cobra.Command{
	Use:   "download <id|name> [local-dir]",
	Short: "Download a file",
	Long: `Download a file you own or any public file.

  sharebox download report.pdf                Download to current directory
  sharebox download report.pdf ./out          Download to a directory
  sharebox download <uuid> -o copy.pdf        Download by id to a path`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := resolveFileID(apiClient, args[0])
		if err != nil {
			return err
		}

		var resp api.Response[api.File]
		if err := apiClient.Get("/files/"+fileID, nil, &resp); err != nil {
			return fmt.Errorf("fetching file info: %w", err)
		}
		f := resp.Data

		destDir := "."
		if len(args) > 1 {
			destDir = args[1]
		}
		dest := filepath.Join(destDir, filepath.Base(f.Name))
		if flagOutput != "" {
			dest = flagOutput
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}

		if err := apiClient.DownloadToFile("/files/"+f.ID+"/download", dest); err != nil {
			return fmt.Errorf("downloading: %w", err)
		}

		fmt.Printf("Downloaded %s -> %s\n", f.Name, dest)
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file path (overrides default naming)")
	rootCmd.AddCommand(downloadCmd)
}
