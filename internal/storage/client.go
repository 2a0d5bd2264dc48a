package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client uploads binary payloads to the blob store and returns public URLs.
// The store is treated as an opaque collaborator: one authenticated PUT per
// object, no retries.
type Client struct {
	baseURL       string
	publicBaseURL string
	token         string
	client        *http.Client
}

func New(baseURL, publicBaseURL, token string) *Client {
	if publicBaseURL == "" {
		publicBaseURL = baseURL
	}

	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		token:         token,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload stores the payload under a random object name in the given folder
// and returns the public URL.
func (c *Client) Upload(ctx context.Context, data []byte, fileName, mimeType, folder string) (string, error) {
	object := uuid.NewString() + strings.ToLower(path.Ext(fileName))
	target := fmt.Sprintf("%s/%s/%s", c.baseURL, folder, object)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	if mimeType != "" {
		req.Header.Set("Content-Type", mimeType)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, folder, object), nil
}
