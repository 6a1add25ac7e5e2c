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

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/feedgrab/pkg/config"
	"github.com/walteh/feedgrab/pkg/download"
	"github.com/walteh/feedgrab/pkg/feed"
	"github.com/walteh/feedgrab/pkg/log"
	"github.com/walteh/feedgrab/pkg/storage"
)

// defaultConfigFiles are tried in order when --config is not given
var defaultConfigFiles = []string{".feedgrab", ".feedgrab.yaml", ".feedgrab.yml", ".feedgrab.hcl", ".feedgrab.json"}

type downloadFlags struct {
	configFile   string
	out          string
	baseURL      string
	cookie       string
	pathTemplate string
	timeout      time.Duration
	noCache      bool
	text         bool
	html         bool
	image        bool
	video        bool
	ignore       []string
}

func newDownloadCmd() *cobra.Command {
	flags := &downloadFlags{}

	cmd := &cobra.Command{
		Use:   "download AUTHOR/ID...",
		Short: "Download one or more feed posts",
		Long: `Download fetches each post and saves the enabled parts of it.
A post is named by its author and id, either as "AUTHOR/ID" or as its url.
Settings come from the defaults, then the config file, then flags.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, flags, args)
		},
	}

	bindDownloadFlags(cmd, flags)
	return cmd
}

func bindDownloadFlags(cmd *cobra.Command, flags *downloadFlags) {
	f := cmd.Flags()
	f.StringVarP(&flags.configFile, "config", "c", "", "config file path (yaml, hcl or json)")
	f.StringVarP(&flags.out, "out", "o", ".", "output root directory")
	f.StringVar(&flags.baseURL, "base-url", feed.DefaultBaseURL, "site the posts are fetched from")
	f.StringVar(&flags.cookie, "cookie", "", "cookie header sent with page requests")
	f.StringVar(&flags.pathTemplate, "path-template", config.DefaultPathTemplate, "destination directory template")
	f.DurationVar(&flags.timeout, "timeout", config.DefaultTimeout, "timeout for each file transfer")
	f.BoolVar(&flags.noCache, "no-cache", false, "transfer repeated sources again")
	f.BoolVar(&flags.text, "text", true, "save the text export")
	f.BoolVar(&flags.html, "html", true, "save the html export")
	f.BoolVar(&flags.image, "image", true, "save pictures")
	f.BoolVar(&flags.video, "video", true, "save the video")
	f.StringArrayVar(&flags.ignore, "ignore", nil, "glob of destinations to skip (repeatable)")
}

// flagOverride holds only the flags set on the command line
func flagOverride(cmd *cobra.Command, flags *downloadFlags) *config.Override {
	changed := cmd.Flags().Changed
	o := &config.Override{}

	content := &config.ContentOverride{}
	if changed("text") {
		content.Text = &flags.text
	}
	if changed("html") {
		content.HTML = &flags.html
	}
	if changed("image") {
		content.Image = &flags.image
	}
	if changed("video") {
		content.Video = &flags.video
	}
	if *content != (config.ContentOverride{}) {
		o.Content = content
	}

	if changed("path-template") {
		o.PathTemplate = &flags.pathTemplate
	}
	if changed("timeout") {
		o.Timeout = &flags.timeout
	}
	if changed("no-cache") {
		useCache := !flags.noCache
		o.Cache = &useCache
	}
	if changed("ignore") {
		o.Ignore = flags.ignore
	}
	return o
}

// loadOverrides returns the config file override followed by the flag override
func loadOverrides(ctx context.Context, cmd *cobra.Command, flags *downloadFlags) ([]*config.Override, error) {
	path := flags.configFile
	if path == "" {
		for _, candidate := range defaultConfigFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	var overrides []*config.Override
	if path != "" {
		fromFile, err := config.Load(ctx, path)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		log.FromContext(ctx).Infof("using config %s", path)
		overrides = append(overrides, fromFile)
	}
	return append(overrides, flagOverride(cmd, flags)), nil
}

func runDownload(cmd *cobra.Command, flags *downloadFlags, args []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)

	refs := make([]feed.Ref, 0, len(args))
	for _, arg := range args {
		ref, err := feed.ParseRef(arg)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}

	overrides, err := loadOverrides(ctx, cmd, flags)
	if err != nil {
		return err
	}

	client := &http.Client{}
	retriever := feed.NewHTTPRetriever(flags.baseURL, client)
	if flags.cookie != "" {
		retriever.WithHeader("Cookie", flags.cookie)
	}

	d, err := download.New(download.Options{
		Overrides:  overrides,
		Retriever:  retriever,
		Capability: storage.New(flags.out, client),
	})
	if err != nil {
		return errors.Errorf("creating downloader: %w", err)
	}

	logger.Debug().Stringer("config", d.Config()).Str("out", flags.out).Msg("downloading")
	console.Header(d.Config().String())

	results := make([]result, 0, len(refs))
	for _, ref := range refs {
		ok, err := d.Download(ctx, ref)
		if err != nil {
			logger.Debug().Err(err).Stringer("ref", ref).Msg("download failed")
			console.Errorf("%s: %v", ref, err)
		}
		results = append(results, result{Ref: ref, OK: ok, Err: err})
		console.LogNewline()
	}

	table, err := renderSummary(results)
	if err != nil {
		return errors.Errorf("rendering summary: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), table)

	if failed := countFailed(results); failed > 0 {
		return errors.Errorf("%d of %d items failed", failed, len(results))
	}
	console.Successf("downloaded %d item(s)", len(results))
	return nil
}
