package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/spotfinder/pkg/buildinfo"
	"github.com/matzehuels/spotfinder/pkg/cache"
	"github.com/matzehuels/spotfinder/pkg/errors"
	"github.com/matzehuels/spotfinder/pkg/scene"
)

// maxSceneBytes caps the size of a downloaded scene document.
const maxSceneBytes = 64 << 20

// newHTTPClient returns the client used to download remote scenes.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// isRemote reports whether a scene path is an http(s) URL.
func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// fetchDocument downloads a scene document. Network failures and 5xx
// responses are retried with backoff; a 404 is FILE_NOT_FOUND.
func (r *Runner) fetchDocument(ctx context.Context, url string) (scene.Document, error) {
	var doc scene.Document
	err := cache.RetryWithBackoff(ctx, func() error {
		d, err := r.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return scene.Document{}, err
	}
	if doc.Source == "" {
		doc.Source = url
	}
	return doc, nil
}

func (r *Runner) fetchOnce(ctx context.Context, url string) (scene.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return scene.Document{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "scene url %s", url)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "spotfinder/"+buildinfo.Version)

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return scene.Document{}, ctx.Err()
		}
		return scene.Document{}, cache.Retryable(errors.Wrap(errors.ErrCodeInternal, err, "fetch scene %s", url))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return scene.Document{}, errors.New(errors.ErrCodeFileNotFound, "scene not found: %s", url)
	case resp.StatusCode >= 500:
		return scene.Document{}, cache.Retryable(errors.New(errors.ErrCodeInternal,
			"fetch scene %s: status %d", url, resp.StatusCode))
	default:
		return scene.Document{}, errors.New(errors.ErrCodeInvalidInput,
			"fetch scene %s: status %d", url, resp.StatusCode)
	}

	doc, err := scene.ReadDocument(io.LimitReader(resp.Body, maxSceneBytes))
	if err != nil {
		return scene.Document{}, fmt.Errorf("%s: %w", url, err)
	}
	return doc, nil
}
