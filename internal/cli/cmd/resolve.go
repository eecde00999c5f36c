package cmd

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/sharebox/sharebox/internal/cli/api"
)

// resolveFileID accepts a file id or the exact name of one of the caller's
// own files.
func resolveFileID(client *api.Client, ref string) (string, error) {
	if _, err := uuid.Parse(ref); err == nil {
		return ref, nil
	}

	var resp api.Response[[]api.File]
	if err := client.Get("/files", url.Values{"q": {ref}}, &resp); err != nil {
		return "", fmt.Errorf("looking up %q: %w", ref, err)
	}

	var matches []api.File
	for _, f := range resp.Data {
		if f.Name == ref {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no file named %q", ref)
	case 1:
		return matches[0].ID, nil
	default:
		return "", fmt.Errorf("%d files are named %q: use the file id instead", len(matches), ref)
	}
}
