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

package transport

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/feedgrab/pkg/cache"
	"github.com/walteh/feedgrab/pkg/pathtmpl"
	"github.com/walteh/feedgrab/pkg/sanitize"
)

// DefaultTimeout bounds a single transfer when Options.Timeout is unset
const DefaultTimeout = 5 * time.Minute

// 📨 Request is one unit of work for the download capability.
// URL is either a network URL or a data URL carrying the content inline.
type Request struct {
	URL         string
	Destination string
}

// 🔌 Capability writes the content behind a URL to a destination path.
// It may be slow and may fail; the transporter bounds it with a timeout.
type Capability interface {
	PerformDownload(ctx context.Context, req Request) error
}

// CapabilityFunc adapts a function to Capability
type CapabilityFunc func(ctx context.Context, req Request) error

func (f CapabilityFunc) PerformDownload(ctx context.Context, req Request) error {
	return f(ctx, req)
}

// 🔧 Options configures a Transporter
type Options struct {
	// Capability performs the actual transfers (required)
	Capability Capability
	// BasePath is the directory templates are resolved against
	BasePath string
	// Cache enables per-source destination deduplication
	Cache bool
	// Timeout bounds each transfer, DefaultTimeout when zero
	Timeout time.Duration
	// Sanitizer cleans resolved paths, a fresh one when nil
	Sanitizer *sanitize.Sanitizer
	// Ignore holds doublestar globs; matching destinations are skipped
	Ignore []string
}

// 🚚 Transporter executes logical downloads against a Capability
type Transporter struct {
	capability Capability
	paths      *pathtmpl.Resolver
	cache      *cache.Cache
	timeout    time.Duration
	ignore     []string
}

// 🏭 New creates a transporter
func New(opts Options) (*Transporter, error) {
	if opts.Capability == nil {
		return nil, errors.Errorf("capability is required")
	}
	for _, pattern := range opts.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	t := &Transporter{
		capability: opts.Capability,
		paths:      pathtmpl.New(opts.BasePath, opts.Sanitizer),
		timeout:    opts.Timeout,
		ignore:     opts.Ignore,
	}
	if t.timeout <= 0 {
		t.timeout = DefaultTimeout
	}
	if opts.Cache {
		t.cache = cache.New()
	}
	return t, nil
}

// Cache returns the dedup cache, nil when caching is disabled
func (t *Transporter) Cache() *cache.Cache {
	return t.cache
}

// Timeout returns the per-transfer timeout
func (t *Transporter) Timeout() time.Duration {
	return t.timeout
}

// Resolve returns the destination a template maps to for params
func (t *Transporter) Resolve(template string, params pathtmpl.Params) string {
	return t.paths.Resolve(template, params)
}

// 📋 Outcome tells how a logical download was satisfied
type Outcome int

const (
	// OutcomeTransferred means the capability wrote the destination
	OutcomeTransferred Outcome = iota
	// OutcomeCached means this source already went to the destination
	OutcomeCached
	// OutcomeIgnored means the destination matched an ignore pattern
	OutcomeIgnored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTransferred:
		return "transferred"
	case OutcomeCached:
		return "cached"
	case OutcomeIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// 🌐 DownloadFromSource transfers rawURL to the destination template resolves
// to and returns that destination. A source already written to the same
// destination by this transporter is not transferred again.
func (t *Transporter) DownloadFromSource(ctx context.Context, rawURL, template string, params pathtmpl.Params) (string, error) {
	destination, _, err := t.FetchSource(ctx, rawURL, template, params)
	return destination, err
}

// FetchSource is DownloadFromSource that also reports whether the transfer
// actually ran
func (t *Transporter) FetchSource(ctx context.Context, rawURL, template string, params pathtmpl.Params) (string, Outcome, error) {
	source, err := Canonicalize(rawURL)
	if err != nil {
		return "", OutcomeTransferred, err
	}

	if t.cache != nil {
		t.cache.Register(source)
	}

	destination := t.paths.Resolve(template, params)
	logger := zerolog.Ctx(ctx).With().Str("source", source).Str("destination", destination).Logger()

	if t.Ignores(destination) {
		logger.Debug().Msg("destination ignored by pattern")
		return destination, OutcomeIgnored, nil
	}

	req := Request{URL: source, Destination: destination}

	if t.cache == nil {
		if err := t.perform(ctx, source, req); err != nil {
			return "", OutcomeTransferred, err
		}
		return destination, OutcomeTransferred, nil
	}

	hit, err := t.cache.Do(source, destination, func() error {
		return t.perform(ctx, source, req)
	})
	if err != nil {
		return "", OutcomeTransferred, err
	}
	if hit {
		logger.Debug().Msg("already downloaded, skipping transfer")
		return destination, OutcomeCached, nil
	}
	return destination, OutcomeTransferred, nil
}

// 📝 DownloadFromPayload writes an in-memory payload to the destination
// template resolves to. Payloads are never deduplicated.
func (t *Transporter) DownloadFromPayload(ctx context.Context, payload []byte, mimeType, template string, params pathtmpl.Params) (string, error) {
	destination := t.paths.Resolve(template, params)

	if t.Ignores(destination) {
		zerolog.Ctx(ctx).Debug().Str("destination", destination).Msg("destination ignored by pattern")
		return destination, nil
	}

	err := withDataURL(payload, mimeType, func(dataURL string) error {
		return t.perform(ctx, "payload", Request{URL: dataURL, Destination: destination})
	})
	if err != nil {
		return "", err
	}
	return destination, nil
}

// perform races the capability against the timeout. A capability that never
// returns is abandoned; its context is cancelled on the way out.
func (t *Transporter) perform(ctx context.Context, source string, req Request) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- t.capability.PerformDownload(ctx, req)
	}()

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return &TransferError{Source: source, Destination: req.Destination, Err: err}
		}
		zerolog.Ctx(ctx).Debug().Str("destination", req.Destination).Msg("transfer complete")
		return nil
	case <-timer.C:
		return errors.Errorf("downloading to %s after %s: %w", req.Destination, t.timeout, ErrTimeout)
	case <-ctx.Done():
		return errors.Errorf("downloading to %s: %w", req.Destination, ctx.Err())
	}
}

// Ignores reports whether destination matches an ignore pattern
func (t *Transporter) Ignores(destination string) bool {
	for _, pattern := range t.ignore {
		if ok, _ := doublestar.Match(pattern, destination); ok {
			return true
		}
	}
	return false
}

// 🔗 Canonicalize returns the absolute, normalized form of a source URL
func Canonicalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", errors.Errorf("%w: parsing url %q: %s", ErrMalformedInput, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.Errorf("%w: url %q is not absolute", ErrMalformedInput, raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}
