package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sharebox/sharebox/internal/cli/api"
)

// Stdout is where every printer writes.
var Stdout io.Writer = os.Stdout

// JSON prints v as indented JSON.
func JSON(v interface{}) {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// FileTable prints files as a table. showUploader adds the uploader column
// used by the public listing.
func FileTable(files []api.File, showUploader bool) {
	if len(files) == 0 {
		fmt.Fprintln(Stdout, "No files found.")
		return
	}

	w := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	header := "ID\tNAME\tSIZE\tTYPE\tVISIBILITY\tCREATED"
	if showUploader {
		header += "\tUPLOADER"
	}
	fmt.Fprintln(w, header)

	for _, f := range files {
		name := f.Name
		if !f.DownloadAvailable {
			name += " (unavailable)"
		}
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s", shortID(f.ID), name, FormatSize(f.Size), shortMIME(f.MimeType), visibility(f.IsPublic), RelativeTime(f.CreatedAt))
		if showUploader {
			row += "\t" + f.UploaderName
		}
		fmt.Fprintln(w, row)
	}
	w.Flush()
}

// FileDetail prints a single file's details.
func FileDetail(f api.File) {
	w := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", f.Name)
	fmt.Fprintf(w, "ID:\t%s\n", f.ID)
	fmt.Fprintf(w, "Type:\t%s\n", f.MimeType)
	fmt.Fprintf(w, "Size:\t%s\n", FormatSize(f.Size))
	fmt.Fprintf(w, "Visibility:\t%s\n", visibility(f.IsPublic))
	fmt.Fprintf(w, "Uploaded By:\t%s\n", f.UploadedBy)
	if len(f.Tags) > 0 {
		fmt.Fprintf(w, "Tags:\t%s\n", strings.Join(f.Tags, ", "))
	}
	if f.Description != nil {
		fmt.Fprintf(w, "Description:\t%s\n", *f.Description)
	}
	if f.URL != nil {
		fmt.Fprintf(w, "URL:\t%s\n", *f.URL)
	} else {
		fmt.Fprintf(w, "URL:\t%s\n", "not available")
	}
	fmt.Fprintf(w, "Created:\t%s\n", f.CreatedAt.Format(time.RFC3339))
	w.Flush()
}

func UserInfo(u api.User) {
	w := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	if u.Email != nil {
		fmt.Fprintf(w, "Email:\t%s\n", *u.Email)
	}
	if u.Name != nil {
		fmt.Fprintf(w, "Name:\t%s\n", *u.Name)
	}
	fmt.Fprintf(w, "Role:\t%s\n", u.Role)
	fmt.Fprintf(w, "ID:\t%s\n", u.ID)
	w.Flush()
}

// Usage prints the storage dashboard.
func Usage(u api.Usage) {
	w := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Files:\t%s\n", humanize.Comma(u.FileCount))
	fmt.Fprintf(w, "Used:\t%s of %s (%.1f%%)\n", u.Used, u.Capacity, u.UsedPercent)
	fmt.Fprintf(w, "Available:\t%s\n", u.Available)
	w.Flush()

	if u.NearCapacity {
		fmt.Fprintln(Stdout, "Warning: storage is nearly full.")
	}

	if len(u.Categories) == 0 {
		return
	}
	fmt.Fprintln(Stdout)
	w = tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tFILES\tSIZE\tSHARE")
	for _, c := range u.Categories {
		fmt.Fprintf(w, "%s\t%d\t%s\t%.1f%%\n", c.Category, c.FileCount, c.Human, c.Percent)
	}
	w.Flush()
}

func ContributionTable(entries []api.Contribution) {
	if len(entries) == 0 {
		fmt.Fprintln(Stdout, "No contributions found.")
		return
	}
	w := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tFILE\tMESSAGE\tWHEN")
	for _, e := range entries {
		message := "-"
		if e.Message != nil {
			message = *e.Message
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Kind, e.FileName, message, RelativeTime(e.CreatedAt))
	}
	w.Flush()
}

// FormatSize converts bytes to a human-readable IEC string.
func FormatSize(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.IBytes(uint64(b))
}

// RelativeTime formats a timestamp relative to now, switching to a plain
// date after thirty days.
func RelativeTime(t time.Time) string {
	if time.Since(t) >= 30*24*time.Hour {
		return t.Format("2006-01-02")
	}
	return humanize.Time(t)
}

func visibility(public bool) string {
	if public {
		return "public"
	}
	return "private"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func shortMIME(mime string) string {
	// "application/pdf" -> "pdf", "image/png" -> "png"
	parts := strings.Split(mime, "/")
	if len(parts) == 2 {
		s := parts[1]
		if idx := strings.LastIndex(s, "."); idx >= 0 {
			s = s[idx+1:]
		}
		return s
	}
	return mime
}
