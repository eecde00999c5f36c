package api

import "time"

// File mirrors the server's file record with its resolved download URL.
type File struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Size              int64     `json:"size"`
	MimeType          string    `json:"mimeType"`
	StorageID         string    `json:"storageId"`
	UploadedBy        string    `json:"uploadedBy"`
	IsPublic          bool      `json:"isPublic"`
	Tags              []string  `json:"tags,omitempty"`
	Description       *string   `json:"description,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	URL               *string   `json:"url"`
	DownloadAvailable bool      `json:"downloadAvailable"`
	UploaderName      string    `json:"uploaderName,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	Name      *string   `json:"name,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayName returns the name, falling back to the email.
func (u User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	if u.Email != nil {
		return *u.Email
	}
	return u.ID
}

// LoginResponse is returned by POST /auth/login and /auth/register.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UploadSlot is returned by POST /uploads.
type UploadSlot struct {
	Token     string    `json:"token"`
	UploadURL string    `json:"uploadURL"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type CommitResponse struct {
	StorageID string `json:"storageId"`
}

type CreateFileRequest struct {
	Name        string   `json:"name"`
	Size        int64    `json:"size"`
	Type        string   `json:"type"`
	StorageID   string   `json:"storageId"`
	IsPublic    bool     `json:"isPublic"`
	Tags        []string `json:"tags,omitempty"`
	Description *string  `json:"description,omitempty"`
}

type UploadOptions struct {
	Public      bool
	Tags        []string
	Description *string
}

type CategoryUsage struct {
	Category  string  `json:"category"`
	FileCount int64   `json:"fileCount"`
	Bytes     int64   `json:"bytes"`
	Percent   float64 `json:"percent"`
	Human     string  `json:"human"`
}

// Usage is returned by GET /files/usage.
type Usage struct {
	FileCount      int64           `json:"fileCount"`
	TotalBytes     int64           `json:"totalBytes"`
	CapacityBytes  int64           `json:"capacityBytes"`
	AvailableBytes int64           `json:"availableBytes"`
	UsedPercent    float64         `json:"usedPercent"`
	NearCapacity   bool            `json:"nearCapacity"`
	Used           string          `json:"used"`
	Capacity       string          `json:"capacity"`
	Available      string          `json:"available"`
	Categories     []CategoryUsage `json:"categories"`
}

type Contribution struct {
	ID            string    `json:"id"`
	FileID        string    `json:"fileId"`
	ContributorID string    `json:"contributorId"`
	Kind          string    `json:"kind"`
	Message       *string   `json:"message,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	FileName      string    `json:"fileName"`
}
