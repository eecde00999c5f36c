package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sharebox/sharebox/internal/cli/api"
	"github.com/sharebox/sharebox/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	flagPublic      bool
	flagTags        []string
	flagDescription string
	flagWorkers     int
)

var uploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Upload files or directories",
	Long: `Upload local files to sharebox. Directories are walked recursively
and every regular file inside is uploaded as its own file.

  sharebox upload report.pdf                 Upload a private file
  sharebox upload photo.png --public         Upload and list publicly
  sharebox upload ./album --tag holiday      Upload a directory's files`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&flagPublic, "public", false, "Make the uploaded files public")
	uploadCmd.Flags().StringSliceVar(&flagTags, "tag", nil, "Tag to attach (repeatable)")
	uploadCmd.Flags().StringVar(&flagDescription, "description", "", "Description to attach")
	uploadCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 4, "Number of concurrent upload workers")
	rootCmd.AddCommand(uploadCmd)
}

func uploadOptions() api.UploadOptions {
	opts := api.UploadOptions{Public: flagPublic, Tags: flagTags}
	if d := strings.TrimSpace(flagDescription); d != "" {
		opts.Description = &d
	}
	return opts
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := requireAuth(); err != nil {
		return err
	}

	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil {
			return fmt.Errorf("stat %s: %w", args[0], err)
		}
		if !info.IsDir() {
			return uploadSingleFile(args[0])
		}
	}

	return uploadMany(args)
}

func uploadSingleFile(path string) error {
	file, err := apiClient.UploadFile(path, uploadOptions())
	if err != nil {
		return fmt.Errorf("uploading %s: %w", filepath.Base(path), err)
	}

	if flagJSON {
		output.JSON(file)
		return nil
	}

	fmt.Printf("Uploaded %s (%s) id=%s\n", file.Name, output.FormatSize(file.Size), file.ID)
	return nil
}

// uploadMany feeds every regular file under paths to a worker pool.
func uploadMany(paths []string) error {
	jobs := make(chan string, 64)
	var walkErr error

	var uploaded atomic.Int64
	var failed atomic.Int64

	go func() {
		defer close(jobs)
		for _, root := range paths {
			if err := enqueueFiles(root, jobs); err != nil {
				walkErr = err
				return
			}
		}
	}()

	workers := flagWorkers
	if workers < 1 {
		workers = 1
	}

	opts := uploadOptions()
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				file, err := apiClient.UploadFile(path, opts)
				if err != nil {
					fmt.Fprintf(os.Stderr, "  Failed: %s: %v\n", path, err)
					failed.Add(1)
					continue
				}
				fmt.Printf("  Uploaded: %s (%s)\n", file.Name, output.FormatSize(file.Size))
				uploaded.Add(1)
			}
		}()
	}

	wg.Wait()

	if walkErr != nil {
		return fmt.Errorf("walking files: %w", walkErr)
	}

	fmt.Printf("\nDone: %d uploaded, %d failed\n", uploaded.Load(), failed.Load())
	if failed.Load() > 0 {
		return fmt.Errorf("%d file(s) failed to upload", failed.Load())
	}
	return nil
}

func enqueueFiles(root string, jobs chan<- string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			jobs <- path
		}
		return nil
	})
}
