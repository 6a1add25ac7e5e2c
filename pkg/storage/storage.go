// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package storage writes downloaded content to the local filesystem.
package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/feedgrab/pkg/transport"
)

// 💾 Downloader is a transport.Capability that stores every request under a
// root directory. Files appear atomically: content goes to a temporary file
// in the destination directory which is then renamed into place.
type Downloader struct {
	root   string
	client *http.Client
}

var _ transport.Capability = (*Downloader)(nil)

// 🏭 New creates a downloader rooted at root. A nil client uses http.DefaultClient.
func New(root string, client *http.Client) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{
		root:   filepath.Clean(root),
		client: client,
	}
}

// Root returns the directory destinations are written under
func (d *Downloader) Root() string {
	return d.root
}

// 🔒 absPath maps a destination onto the root, refusing paths that leave it
func (d *Downloader) absPath(destination string) (string, error) {
	rel := filepath.FromSlash(destination)
	if !filepath.IsLocal(rel) {
		return "", errors.Errorf("%w: destination %q escapes the output root", transport.ErrMalformedInput, destination)
	}
	return filepath.Join(d.root, rel), nil
}

// 📥 PerformDownload fetches req.URL, or decodes it when it is a data URL,
// and writes the content to req.Destination
func (d *Downloader) PerformDownload(ctx context.Context, req transport.Request) error {
	absPath, err := d.absPath(req.Destination)
	if err != nil {
		return err
	}

	body, err := d.open(ctx, req.URL)
	if err != nil {
		return err
	}
	defer body.Close()

	n, err := writeFileAtomic(ctx, absPath, body)
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("destination", req.Destination).
		Int64("bytes", n).
		Msg("file written")
	return nil
}

func (d *Downloader) open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if transport.IsDataURL(rawURL) {
		_, data, err := transport.DecodeDataURL(rawURL)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Errorf("creating request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.Errorf("making request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// writeFileAtomic streams r into path through a temporary sibling file. Nothing
// is renamed into place once ctx is done.
func writeFileAtomic(ctx context.Context, path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, errors.Errorf("creating parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return 0, errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return 0, errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return 0, errors.Errorf("setting file mode: %w", err)
	}

	if err := ctx.Err(); err != nil {
		os.Remove(tempPath)
		return 0, errors.Errorf("abandoning %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath) // Clean up temp file
		return 0, errors.Errorf("renaming temp file: %w", err)
	}

	return n, nil
}
