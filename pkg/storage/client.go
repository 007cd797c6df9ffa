package storage

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/atlasmedina/medina-backend/pkg/config"
	"github.com/atlasmedina/medina-backend/pkg/logger"
)

const (
	objectPathPrefix = "/storage/v1/object"
	bucketPathPrefix = "/storage/v1/bucket"
	pingTimeout      = 5 * time.Second
)

// Client talks to the hosted object store over its REST surface. Uploads are
// independent per file; a failed upload never rolls back earlier ones.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	serviceKey    string
	defaultBucket string
	placeholder   string
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewClient(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("storage base url is required")
	}
	if cfg.ProductBucket == "" {
		return nil, errors.New("storage bucket name is required")
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey:    cfg.ServiceKey,
		defaultBucket: cfg.ProductBucket,
		placeholder:   cfg.PlaceholderPath,
	}

	if logg != nil {
		logg.Info(ctx, "storage client initialized")
	}

	return client, nil
}

// DefaultBucket returns the configured bucket name.
func (c *Client) DefaultBucket() string {
	if c == nil {
		return ""
	}
	return c.defaultBucket
}

// Ping verifies the bucket is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.httpClient == nil {
		return errors.New("storage client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	u := fmt.Sprintf("%s%s/%s", c.baseURL, bucketPathPrefix, url.PathEscape(c.defaultBucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("storage ping returned status %d", resp.StatusCode)
	}
	return nil
}

// Upload stores one object under the given path in the default bucket.
func (c *Client) Upload(ctx context.Context, objectPath string, body io.Reader, contentType string) error {
	if objectPath == "" {
		return errors.New("object path is required")
	}

	u := c.objectURL(objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return err
	}
	c.authorize(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", objectPath, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("uploading %s: status %d", objectPath, resp.StatusCode)
	}
	return nil
}

// Delete removes the given objects, continuing past individual failures and
// returning the combined error.
func (c *Client) Delete(ctx context.Context, objectPaths ...string) error {
	var combined error
	for _, objectPath := range objectPaths {
		if objectPath == "" {
			continue
		}
		combined = multierr.Append(combined, c.deleteOne(ctx, objectPath))
	}
	return combined
}

func (c *Client) deleteOne(ctx context.Context, objectPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(objectPath), nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", objectPath, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("deleting %s: status %d", objectPath, resp.StatusCode)
	}
	return nil
}

// PublicURL derives the public URL for a stored path. Absolute URLs pass
// through untouched; empty paths resolve to the placeholder image.
func (c *Client) PublicURL(objectPath string) string {
	if objectPath == "" {
		return c.placeholder
	}
	if strings.HasPrefix(objectPath, "http://") || strings.HasPrefix(objectPath, "https://") {
		return objectPath
	}
	return fmt.Sprintf("%s%s/public/%s/%s", c.baseURL, objectPathPrefix, url.PathEscape(c.defaultBucket), escapePath(objectPath))
}

func (c *Client) objectURL(objectPath string) string {
	return fmt.Sprintf("%s%s/%s/%s", c.baseURL, objectPathPrefix, url.PathEscape(c.defaultBucket), escapePath(objectPath))
}

func (c *Client) authorize(req *http.Request) {
	if c.serviceKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	}
}

func escapePath(objectPath string) string {
	segments := strings.Split(strings.TrimLeft(objectPath, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// ObjectName builds a collision-resistant object name from a random token,
// the current timestamp and the original file's extension.
func ObjectName(originalFilename string) (string, error) {
	token := make([]byte, 8)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("generate object token: %w", err)
	}
	encoded := strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(token))
	ext := strings.ToLower(path.Ext(originalFilename))
	return fmt.Sprintf("%s-%d%s", encoded, time.Now().UnixMilli(), ext), nil
}
