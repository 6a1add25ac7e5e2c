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

// Package download turns one feed item into files: its text, its markup,
// its pictures and its video.
package download

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/feedgrab/pkg/config"
	"github.com/walteh/feedgrab/pkg/feed"
	"github.com/walteh/feedgrab/pkg/log"
	"github.com/walteh/feedgrab/pkg/params"
	"github.com/walteh/feedgrab/pkg/pathtmpl"
	"github.com/walteh/feedgrab/pkg/sanitize"
	"github.com/walteh/feedgrab/pkg/text"
	"github.com/walteh/feedgrab/pkg/transport"
)

// Destination templates, relative to the configured path template
const (
	TextTemplate   = "./$id.txt"
	MarkupTemplate = "./$id.html"
	MediaDir       = "./$id/"
)

// Ref identifies the item to download
type Ref = feed.Ref

// 🏷️ Kind is one independently enabled part of an item
type Kind int

const (
	KindText Kind = iota
	KindMarkup
	KindImage
	KindVideo

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMarkup:
		return "markup"
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// 🔌 Retriever loads the item a Ref points to
type Retriever interface {
	GetItem(ctx context.Context, author, id string) (*feed.Item, error)
}

// 🔧 Options configures a Downloader
type Options struct {
	// Config is the base configuration, config.Default() when nil
	Config *config.Config
	// Overrides are merged over Config from left to right
	Overrides []*config.Override
	// Retriever loads items (required)
	Retriever Retriever
	// Capability performs file transfers (required)
	Capability transport.Capability
	// Sanitizer cleans destination paths, a fresh one when nil
	Sanitizer *sanitize.Sanitizer
}

// 📥 Downloader saves feed items. One Downloader shares its dedup cache
// across every Download call.
type Downloader struct {
	config      config.Config
	retriever   Retriever
	transporter *transport.Transporter
}

// 🏭 New creates a downloader from merged, validated configuration
func New(opts Options) (*Downloader, error) {
	if opts.Retriever == nil {
		return nil, errors.Errorf("retriever is required")
	}

	base := config.Default()
	if opts.Config != nil {
		base = *opts.Config
	}
	cfg := config.Merge(base, opts.Overrides...)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	tr, err := transport.New(transport.Options{
		Capability: opts.Capability,
		BasePath:   cfg.PathTemplate,
		Cache:      cfg.Cache,
		Timeout:    cfg.Timeout,
		Sanitizer:  opts.Sanitizer,
		Ignore:     cfg.Ignore,
	})
	if err != nil {
		return nil, errors.Errorf("creating transporter: %w", err)
	}

	return &Downloader{
		config:      cfg,
		retriever:   opts.Retriever,
		transporter: tr,
	}, nil
}

// Config returns the effective configuration
func (d *Downloader) Config() config.Config {
	return d.config
}

// Transporter returns the transporter every file goes through
func (d *Downloader) Transporter() *transport.Transporter {
	return d.transporter
}

func (d *Downloader) enabled(k Kind) bool {
	switch k {
	case KindText:
		return d.config.Content.Text
	case KindMarkup:
		return d.config.Content.HTML
	case KindImage:
		return d.config.Content.Image
	case KindVideo:
		return d.config.Content.Video
	}
	return false
}

// 🚀 Download saves every enabled kind of the item ref points to. All kinds
// run to completion; it reports true only when each of them succeeded, and
// otherwise returns a *PartialFailure naming the kinds that did not.
func (d *Downloader) Download(ctx context.Context, ref Ref) (bool, error) {
	downloadID := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().
		Str("download_id", downloadID).
		Str("author", ref.Author).
		Str("id", ref.ID).
		Logger()
	ctx = logger.WithContext(ctx)

	console := log.FromContext(ctx)
	console.StartItemOperation(ctx, log.ItemOperation{Author: ref.Author, ID: ref.ID, DownloadID: downloadID})
	defer console.EndItemOperation(ctx)

	item, err := d.retriever.GetItem(ctx, ref.Author, ref.ID)
	if err != nil {
		return false, errors.Errorf("retrieving %s: %w", ref, err)
	}
	if item == nil {
		return false, errors.Errorf("%w: no item returned for %s", transport.ErrMalformedInput, ref)
	}
	if item.ID() == "" {
		return false, errors.Errorf("%w: item %s has no identifier", transport.ErrMalformedInput, ref)
	}

	p := params.New(item)

	var results [kindCount][]error
	var g errgroup.Group
	for k := Kind(0); k < kindCount; k++ {
		if !d.enabled(k) {
			logger.Debug().Stringer("kind", k).Msg("kind disabled")
			continue
		}
		g.Go(func() error {
			results[k] = d.downloadKind(ctx, k, item, p)
			return nil
		})
	}
	_ = g.Wait()

	var failure *PartialFailure
	for k, errs := range results {
		if len(errs) == 0 {
			continue
		}
		if failure == nil {
			failure = &PartialFailure{Ref: ref}
		}
		failure.Failed = append(failure.Failed, &KindError{Kind: Kind(k), Errs: errs})
	}
	if failure != nil {
		logger.Warn().Strs("failed", kindNames(failure.Kinds())).Msg("item download incomplete")
		console.Warningf("%s: %s incomplete", ref, strings.Join(kindNames(failure.Kinds()), ", "))
		return false, failure
	}

	logger.Info().Msg("item downloaded")
	return true, nil
}

func (d *Downloader) downloadKind(ctx context.Context, k Kind, item *feed.Item, p *params.Resolver) []error {
	switch k {
	case KindText:
		return single(d.payload(ctx, k, text.Export(item.PlainText()), "text/plain;charset=utf-8", TextTemplate, p))
	case KindMarkup:
		markup, err := item.OuterHTML()
		if err != nil {
			return []error{err}
		}
		return single(d.payload(ctx, k, []byte(markup), "text/html;charset=utf-8", MarkupTemplate, p))
	case KindImage:
		return d.images(ctx, item, p)
	case KindVideo:
		return single(d.video(ctx, item, p))
	}
	return nil
}

// 🖼️ images downloads every picture concurrently; each failure is kept
func (d *Downloader) images(ctx context.Context, item *feed.Item, p *params.Resolver) []error {
	srcs := item.Images()
	if len(srcs) == 0 {
		return nil
	}

	errs := make([]error, len(srcs))
	var g errgroup.Group
	for i, src := range srcs {
		g.Go(func() error {
			source, filename, err := largeImage(src)
			if err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = d.fromSource(ctx, KindImage, source, MediaDir+pathtmpl.Escape(filename), p)
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	return failed
}

// 🎬 video downloads the preferred quality of the item's video, if it has one
func (d *Downloader) video(ctx context.Context, item *feed.Item, p *params.Resolver) error {
	descriptor, ok := item.VideoSources()
	if !ok {
		return nil
	}

	source, filename, err := preferredVideo(descriptor)
	if err != nil {
		return err
	}
	return d.fromSource(ctx, KindVideo, source, MediaDir+pathtmpl.Escape(filename), p)
}

func (d *Downloader) fromSource(ctx context.Context, k Kind, source, template string, p *params.Resolver) error {
	dest, outcome, err := d.transporter.FetchSource(ctx, source, template, p)
	d.report(ctx, k, source, dest, template, p, outcome != transport.OutcomeTransferred, err)
	return err
}

func (d *Downloader) payload(ctx context.Context, k Kind, data []byte, mimeType, template string, p *params.Resolver) error {
	dest, err := d.transporter.DownloadFromPayload(ctx, data, mimeType, template, p)
	d.report(ctx, k, "", dest, template, p, err == nil && d.transporter.Ignores(dest), err)
	return err
}

// report logs one file: skipped when nothing was written, failed on err
func (d *Downloader) report(ctx context.Context, k Kind, source, dest, template string, p *params.Resolver, skipped bool, err error) {
	op := log.FileOperation{
		Path:   dest,
		Kind:   k.String(),
		Source: source,
		Status: log.StatusSaved,
	}
	switch {
	case err != nil:
		op.Path = d.transporter.Resolve(template, p)
		op.Status = log.StatusFailed
		op.Err = err
	case skipped:
		op.Status = log.StatusSkipped
	}
	log.FromContext(ctx).LogFileOperation(ctx, op)
}

func single(err error) []error {
	if err == nil {
		return nil
	}
	return []error{err}
}

func kindNames(kinds []Kind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}
