package models

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestBaseModel_BeforeCreate(t *testing.T) {
	t.Run("generates UUID if not set", func(t *testing.T) {
		model := &BaseModel{}
		if err := model.BeforeCreate(nil); err != nil {
			t.Fatalf("BeforeCreate returned error: %v", err)
		}
		if model.ID == uuid.Nil {
			t.Error("expected ID to be generated, got nil UUID")
		}
	})

	t.Run("preserves existing UUID", func(t *testing.T) {
		existingID := uuid.New()
		model := &BaseModel{ID: existingID}
		if err := model.BeforeCreate(nil); err != nil {
			t.Fatalf("BeforeCreate returned error: %v", err)
		}
		if model.ID != existingID {
			t.Errorf("expected ID to remain %s, got %s", existingID, model.ID)
		}
	})
}

func TestFile_BeforeCreate(t *testing.T) {
	file := &File{Name: "a.txt"}
	if err := file.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate returned error: %v", err)
	}
	if file.ID == uuid.Nil {
		t.Error("expected ID to be generated")
	}
	if file.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be assigned")
	}
}

func TestFile_MimeCategory(t *testing.T) {
	tests := []struct {
		mimeType string
		want     string
	}{
		{"image/png", "image"},
		{"Video/MP4", "video"},
		{"application/pdf", "application"},
		{"", "other"},
		{"text", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			f := &File{MimeType: tt.mimeType}
			if got := f.MimeCategory(); got != tt.want {
				t.Errorf("MimeCategory() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, nil},
		{"only blanks", []string{" ", ""}, nil},
		{"trims and dedupes", []string{" work ", "draft", "work", ""}, []string{"work", "draft"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTags(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestContributionKind_Valid(t *testing.T) {
	for _, kind := range []ContributionKind{ContributionUpload, ContributionShare, ContributionComment} {
		if !kind.Valid() {
			t.Errorf("expected %q to be valid", kind)
		}
	}
	if ContributionKind("like").Valid() {
		t.Error("expected 'like' to be invalid")
	}
}

func TestUser_DisplayName(t *testing.T) {
	name := "Ada"
	if got := (&User{Name: &name}).DisplayName(); got != "Ada" {
		t.Errorf("expected Ada, got %q", got)
	}
	if got := (&User{}).DisplayName(); got != "" {
		t.Errorf("expected empty name, got %q", got)
	}
	var nilUser *User
	if got := nilUser.DisplayName(); got != "" {
		t.Errorf("expected empty name for nil user, got %q", got)
	}
}

func TestTableNames(t *testing.T) {
	if (File{}).TableName() != "files" {
		t.Error("expected table name 'files'")
	}
	if (Contribution{}).TableName() != "contributions" {
		t.Error("expected table name 'contributions'")
	}
}
