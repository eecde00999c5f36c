package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client wraps HTTP calls to the sharebox API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a Client from a server URL (e.g. http://localhost:8080) and bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/") + "/api",
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Response is the standard { success, data, error } envelope.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

// APIError is returned when the server sends a non-2xx status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

func (c *Client) newRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: string(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// Get sends a GET request and decodes the JSON body into out.
func (c *Client) Get(path string, params url.Values, out interface{}) error {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	req, err := c.newRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, out)
}

// Post sends a POST with a JSON body.
func (c *Client) Post(path string, body interface{}, out interface{}) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}
	req, err := c.newRequest(http.MethodPost, path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) Delete(path string, out interface{}) error {
	req, err := c.newRequest(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, out)
}

// CommitBlob streams a local file to an upload slot and returns the storage
// id the server assigned. The slot token is the only credential sent.
func (c *Client) CommitBlob(slotToken, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat file: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/uploads/"+url.PathEscape(slotToken), f)
	if err != nil {
		return "", err
	}
	req.ContentLength = fi.Size()
	req.Header.Set("Content-Type", DetectContentType(filePath))
	req.Header.Set("Accept", "application/json")

	var resp Response[CommitResponse]
	if err := c.doJSON(req, &resp); err != nil {
		return "", err
	}
	return resp.Data.StorageID, nil
}

// UploadFile runs the slot, commit and create sequence for one local file.
func (c *Client) UploadFile(filePath string, opts UploadOptions) (*File, error) {
	fi, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	var slot Response[UploadSlot]
	if err := c.Post("/uploads", nil, &slot); err != nil {
		return nil, fmt.Errorf("requesting upload slot: %w", err)
	}

	storageID, err := c.CommitBlob(slot.Data.Token, filePath)
	if err != nil {
		return nil, fmt.Errorf("uploading content: %w", err)
	}

	body := CreateFileRequest{
		Name:        filepath.Base(filePath),
		Size:        fi.Size(),
		Type:        DetectContentType(filePath),
		StorageID:   storageID,
		IsPublic:    opts.Public,
		Tags:        opts.Tags,
		Description: opts.Description,
	}
	var created Response[File]
	if err := c.Post("/files", body, &created); err != nil {
		return nil, fmt.Errorf("creating file record: %w", err)
	}
	return &created.Data, nil
}

// DownloadToFile streams a GET under the API base path to a file on disk.
func (c *Client) DownloadToFile(path, dest string) error {
	req, err := c.newRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: string(body)}
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// DetectContentType guesses a MIME type from the file extension.
func DetectContentType(filePath string) string {
	if t := mime.TypeByExtension(filepath.Ext(filePath)); t != "" {
		return t
	}
	return "application/octet-stream"
}
