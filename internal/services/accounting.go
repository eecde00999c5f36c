package services

import (
	"context"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/sharebox/sharebox/internal/config"
	"github.com/sharebox/sharebox/internal/models"
	"gorm.io/gorm"
)

const (
	defaultCapacityBytes = int64(1 << 30)
	defaultWarnPercent   = 80
)

// StorageAccounting derives usage figures from file records on every call.
// It has no state of its own and never rejects an upload.
type StorageAccounting struct {
	db            *gorm.DB
	capacityBytes int64
	warnPercent   float64
}

func NewStorageAccounting(db *gorm.DB, cfg config.StorageConfig) *StorageAccounting {
	capacity := cfg.CapacityBytes
	if capacity <= 0 {
		capacity = defaultCapacityBytes
	}
	warn := cfg.WarnPercent
	if warn <= 0 {
		warn = defaultWarnPercent
	}
	return &StorageAccounting{db: db, capacityBytes: capacity, warnPercent: warn}
}

type StorageStats struct {
	FileCount  int64 `json:"fileCount"`
	TotalBytes int64 `json:"totalBytes"`
}

type CategoryUsage struct {
	Category  string  `json:"category"`
	FileCount int64   `json:"fileCount"`
	Bytes     int64   `json:"bytes"`
	Percent   float64 `json:"percent"`
	Human     string  `json:"human"`
}

type UsageReport struct {
	StorageStats
	CapacityBytes  int64           `json:"capacityBytes"`
	AvailableBytes int64           `json:"availableBytes"`
	UsedPercent    float64         `json:"usedPercent"`
	NearCapacity   bool            `json:"nearCapacity"`
	Used           string          `json:"used"`
	Capacity       string          `json:"capacity"`
	Available      string          `json:"available"`
	Categories     []CategoryUsage `json:"categories"`
}

// GetStorageStats sums caller's own records. Logged-out dashboards show
// zeros, so an unauthenticated caller gets zero values rather than an error.
func (a *StorageAccounting) GetStorageStats(ctx context.Context, caller *models.User) (StorageStats, error) {
	if caller == nil {
		return StorageStats{}, nil
	}

	var stats StorageStats
	err := a.db.WithContext(ctx).
		Model(&models.File{}).
		Select("COUNT(*) AS file_count, CAST(COALESCE(SUM(size), 0) AS BIGINT) AS total_bytes").
		Where("owner_id = ?", caller.ID).
		Scan(&stats).Error
	if err != nil {
		return StorageStats{}, err
	}
	return stats, nil
}

// Usage reports stats against the configured capacity with a per-category
// breakdown. The capacity is a display figure only.
func (a *StorageAccounting) Usage(ctx context.Context, caller *models.User) (UsageReport, error) {
	var files []models.File
	if caller != nil {
		if err := a.db.WithContext(ctx).
			Select("mime_type", "size").
			Where("owner_id = ?", caller.ID).
			Find(&files).Error; err != nil {
			return UsageReport{}, err
		}
	}

	var stats StorageStats
	byCategory := make(map[string]*CategoryUsage)
	for i := range files {
		f := &files[i]
		stats.FileCount++
		stats.TotalBytes += f.Size

		category := f.MimeCategory()
		entry, ok := byCategory[category]
		if !ok {
			entry = &CategoryUsage{Category: category}
			byCategory[category] = entry
		}
		entry.FileCount++
		entry.Bytes += f.Size
	}

	categories := make([]CategoryUsage, 0, len(byCategory))
	for _, entry := range byCategory {
		if stats.TotalBytes > 0 {
			entry.Percent = float64(entry.Bytes) * 100 / float64(stats.TotalBytes)
		}
		entry.Human = humanize.IBytes(uint64(entry.Bytes))
		categories = append(categories, *entry)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Bytes != categories[j].Bytes {
			return categories[i].Bytes > categories[j].Bytes
		}
		return categories[i].Category < categories[j].Category
	})

	available := a.capacityBytes - stats.TotalBytes
	if available < 0 {
		available = 0
	}
	usedPercent := float64(stats.TotalBytes) * 100 / float64(a.capacityBytes)

	return UsageReport{
		StorageStats:   stats,
		CapacityBytes:  a.capacityBytes,
		AvailableBytes: available,
		UsedPercent:    usedPercent,
		NearCapacity:   usedPercent > a.warnPercent,
		Used:           humanize.IBytes(uint64(stats.TotalBytes)),
		Capacity:       humanize.IBytes(uint64(a.capacityBytes)),
		Available:      humanize.IBytes(uint64(available)),
		Categories:     categories,
	}, nil
}
