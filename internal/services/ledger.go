package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sharebox/sharebox/internal/models"
	"github.com/sharebox/sharebox/pkg/logger"
	"gorm.io/gorm"
)

const unknownFileName = "Unknown file"

// ContributionLedger is an append-only log of what users did with files.
type ContributionLedger struct {
	db *gorm.DB
}

func NewContributionLedger(db *gorm.DB) *ContributionLedger {
	return &ContributionLedger{db: db}
}

// ContributionEntry carries the referenced file's name as of read time.
type ContributionEntry struct {
	models.Contribution
	FileName string `json:"fileName"`
}

// RecordContribution appends an event. The file id is not checked: readers
// tolerate dangling references.
func (l *ContributionLedger) RecordContribution(ctx context.Context, caller *models.User, fileID uuid.UUID, kind models.ContributionKind, message *string) (*models.Contribution, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: kind must be upload, share or comment", ErrInvalidInput)
	}
	if fileID == uuid.Nil {
		return nil, fmt.Errorf("%w: file id is required", ErrInvalidInput)
	}

	var msg *string
	if message != nil {
		if m := strings.TrimSpace(*message); m != "" {
			msg = &m
		}
	}

	contribution := &models.Contribution{
		FileID:        fileID,
		ContributorID: caller.ID,
		Kind:          kind,
		Message:       msg,
	}
	if err := l.db.WithContext(ctx).Create(contribution).Error; err != nil {
		return nil, err
	}

	contributionsRecordedTotal.WithLabelValues(string(kind)).Inc()
	logger.InfoWithUser(caller.ID.String(), "contribution_recorded", map[string]interface{}{
		"contribution_id": contribution.ID,
		"file_id":         fileID,
		"kind":            kind,
	})
	return contribution, nil
}

// ListOwnContributions returns caller's events, newest first. An
// unauthenticated caller gets an empty list.
func (l *ContributionLedger) ListOwnContributions(ctx context.Context, caller *models.User) ([]ContributionEntry, error) {
	if caller == nil {
		return []ContributionEntry{}, nil
	}

	var contributions []models.Contribution
	if err := l.db.WithContext(ctx).
		Where("contributor_id = ?", caller.ID).
		Order("created_at DESC").
		Find(&contributions).Error; err != nil {
		return nil, err
	}

	names, err := l.fileNames(ctx, contributions)
	if err != nil {
		return nil, err
	}

	entries := make([]ContributionEntry, 0, len(contributions))
	for _, c := range contributions {
		name, ok := names[c.FileID]
		if !ok {
			name = unknownFileName
		}
		entries = append(entries, ContributionEntry{Contribution: c, FileName: name})
	}
	return entries, nil
}

func (l *ContributionLedger) fileNames(ctx context.Context, contributions []models.Contribution) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string)
	if len(contributions) == 0 {
		return names, nil
	}

	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0, len(contributions))
	for _, c := range contributions {
		if _, ok := seen[c.FileID]; ok {
			continue
		}
		seen[c.FileID] = struct{}{}
		ids = append(ids, c.FileID)
	}

	var files []models.File
	if err := l.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&files).Error; err != nil {
		return nil, err
	}
	for _, f := range files {
		names[f.ID] = f.Name
	}
	return names, nil
}
