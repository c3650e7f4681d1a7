// Package gh is a minimal GitHub releases client covering the two
// operations podscan needs: listing releases for a repository and
// fetching a named asset from one of them.
package gh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/container-tools/podscan/util/common/errors"
	"github.com/container-tools/podscan/util/common/progress"
)

const defaultAPIBase = "https://api.github.com"

// Release is a published release of an upstream tool repository.
type Release struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	TagName    string `json:"tag_name"`
	Prerelease bool   `json:"prerelease"`
}

// Asset is a downloadable artifact attached to a release.
type Asset struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Client talks to the GitHub REST API for one (owner, repo) pair.
type Client struct {
	http    *retryablehttp.Client
	apiBase string
	token   string
	log     zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithAPIBase overrides the API base URL. Used by tests.
func WithAPIBase(base string) Option {
	return func(c *Client) { c.apiBase = base }
}

// WithToken sets the bearer token sent on API requests.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// NewClient builds a release client. When no token option is given the
// token is resolved from the environment and the user's gitconfig.
func NewClient(log zerolog.Logger, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil

	c := &Client{
		http:    rc,
		apiBase: defaultAPIBase,
		token:   ResolveToken(),
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ListReleases returns up to limit non-prerelease releases for the
// repository, newest first as returned by the API. No re-sorting is
// performed.
func (c *Client) ListReleases(ctx context.Context, owner, repo string, limit int) ([]Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases", c.apiBase, owner, repo)

	var all []Release
	if err := c.getJSON(ctx, url, &all); err != nil {
		return nil, err
	}

	releases := make([]Release, 0, limit)
	for _, r := range all {
		if r.Prerelease {
			continue
		}
		releases = append(releases, r)
		if len(releases) == limit {
			break
		}
	}

	c.log.Debug().
		Str("repo", owner+"/"+repo).
		Int("fetched", len(all)).
		Int("kept", len(releases)).
		Msg("Listed releases")
	return releases, nil
}

// ListAssets returns the assets attached to a release.
func (c *Client) ListAssets(ctx context.Context, owner, repo string, releaseID int64) ([]Asset, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/%d/assets", c.apiBase, owner, repo, releaseID)

	var assets []Asset
	if err := c.getJSON(ctx, url, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// DownloadAsset streams the named asset of a release to dest, showing a
// progress bar. It fails with a NotFoundError when no asset with that
// name exists; no fallback is attempted.
func (c *Client) DownloadAsset(ctx context.Context, owner, repo string, releaseID int64, assetName, dest string) error {
	assets, err := c.ListAssets(ctx, owner, repo, releaseID)
	if err != nil {
		return err
	}

	var asset *Asset
	for i := range assets {
		if assets[i].Name == assetName {
			asset = &assets[i]
			break
		}
	}
	if asset == nil {
		return errors.NewNotFoundError("release asset", assetName)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases/assets/%d", c.apiBase, owner, repo, asset.ID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req.Request)
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "download asset")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", assetName, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.NewFileError(dest, "create_dir", err)
	}

	// Stream into a temp file and rename so an interrupted download
	// never leaves a partial archive at dest.
	tmp := dest + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return errors.NewFileError(tmp, "create", err)
	}

	body := progress.ReadCloser(resp.ContentLength, resp.Body, assetName)
	defer body.Close()

	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		return errors.NewFileError(dest, "write", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return errors.NewFileError(tmp, "close", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return errors.NewFileError(dest, "rename", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req.Request)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "query releases")
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api returned status %d for %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode release response")
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "podscan")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
