// Package apiclient implements docs.Backend against a remote recdocs server.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recdocs/internal/api"
	"recdocs/internal/docs"
)

// Client handles all communication with the backend API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

var _ docs.Backend = (*Client)(nil)

// New creates a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// do is the single helper for making API requests. A non-nil body is sent as JSON.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	return resp, nil
}

// call performs a request and decodes a response with the expected status into out.
func (c *Client) call(ctx context.Context, method, path string, body any, want int, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return responseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cannot decode response: %w", err)
	}
	return nil
}

// responseError converts an unexpected response to an error. A conflict is
// reported as docs.ErrFolderExists.
func responseError(resp *http.Response) error {
	var body api.ErrorResponse
	msg := http.StatusText(resp.StatusCode)
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}

	var cause error
	if resp.StatusCode == http.StatusConflict {
		cause = docs.ErrFolderExists
	} else {
		cause = errors.New(msg)
	}
	return &api.ErrorWithStatusCode{
		Message:    fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, msg),
		StatusCode: resp.StatusCode,
		Err:        cause,
	}
}

func (c *Client) CheckFolder(ctx context.Context, owner docs.OwnerRef) (docs.FolderLookup, error) {
	var resp api.FolderLookupResponse
	if err := c.call(ctx, http.MethodGet, "/v1/folders/"+url.PathEscape(owner.String()), nil, http.StatusOK, &resp); err != nil {
		return docs.FolderLookup{}, fmt.Errorf("checking folder: %w", err)
	}
	return resp.Lookup(), nil
}

func (c *Client) CreateFolder(ctx context.Context, owner docs.OwnerRef) (docs.FolderContext, error) {
	var resp api.FolderResponse
	req := api.CreateFolderRequest{Owner: owner.String()}
	if err := c.call(ctx, http.MethodPost, "/v1/folders", req, http.StatusCreated, &resp); err != nil {
		return docs.FolderContext{}, fmt.Errorf("creating folder: %w", err)
	}
	return resp.Folder, nil
}

func (c *Client) UploadFiles(ctx context.Context, batch []docs.StagedFile) ([]docs.UploadedFile, error) {
	var resp api.UploadResponse
	if err := c.call(ctx, http.MethodPost, "/v1/files", api.NewUploadRequest(batch), http.StatusCreated, &resp); err != nil {
		return nil, fmt.Errorf("uploading files: %w", err)
	}
	return resp.Files, nil
}

func (c *Client) DeleteFile(ctx context.Context, fileID string) (bool, error) {
	var resp api.DeleteResponse
	if err := c.call(ctx, http.MethodDelete, "/v1/files/"+url.PathEscape(fileID), nil, http.StatusOK, &resp); err != nil {
		return false, fmt.Errorf("deleting file: %w", err)
	}
	return resp.Deleted, nil
}

// ValidateSetup checks that the server is ready.
func (c *Client) ValidateSetup(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/readyz", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend not ready: status %d", resp.StatusCode)
	}
	return nil
}
