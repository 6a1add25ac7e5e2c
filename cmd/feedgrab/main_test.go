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
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/feedgrab/pkg/config"
	"github.com/walteh/feedgrab/pkg/download"
	"github.com/walteh/feedgrab/pkg/feed"
)

const page = `<html><body>
<div class="WB_cardwrap" mid="4987" tbinfo="ouid=1234">
	<div class="WB_from"><a date="1577808000000">2020-01-01</a></div>
	<div node-type="feed_list_content">hello</div>
</div>
</body></html>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1234/4987" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	pterm.DisableStyling()
	t.Cleanup(func() {
		color.NoColor = false
		pterm.EnableStyling()
	})

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestDownloadCommand(t *testing.T) {
	server := newFeedServer(t)

	t.Run("default_layout", func(t *testing.T) {
		out := t.TempDir()
		output, err := execute(t, "download", "--base-url", server.URL, "--out", out, "--image=false", "--video=false", "1234/4987")
		require.NoError(t, err, output)

		text, err := os.ReadFile(filepath.Join(out, "wbg/202001/1234/4987.txt"))
		require.NoError(t, err)
		assert.Equal(t, "\ufeffhello", string(text))

		markup, err := os.ReadFile(filepath.Join(out, "wbg/202001/1234/4987.html"))
		require.NoError(t, err)
		assert.Contains(t, string(markup), `mid="4987"`)

		assert.Contains(t, output, "◆ 1234 • 4987")
		assert.Contains(t, output, "1234/4987")
		assert.Contains(t, output, "downloaded 1 item(s)")
	})

	t.Run("post_url_and_path_template", func(t *testing.T) {
		out := t.TempDir()
		_, err := execute(t, "download", "--base-url", server.URL, "--out", out,
			"--html=false", "--image=false", "--video=false", "--path-template", "./posts/$author/",
			server.URL+"/1234/4987")
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(out, "posts/1234/4987.txt"))
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(out, "posts/1234/4987.html"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("failed_item_exits_non_zero", func(t *testing.T) {
		out := t.TempDir()
		output, err := execute(t, "download", "--base-url", server.URL, "--out", out, "--image=false", "--video=false", "1234/4987", "1234/404")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 items failed")
		assert.Contains(t, output, "failed")
		assert.Contains(t, output, "❌ 1234/404: ")

		_, err = os.Stat(filepath.Join(out, "wbg/202001/1234/4987.txt"))
		require.NoError(t, err, "the good item is still saved")
	})

	t.Run("config_file", func(t *testing.T) {
		out := t.TempDir()
		cfgPath := filepath.Join(t.TempDir(), "feedgrab.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("content:\n  html: false\n  image: false\n  video: false\npath_template: ./$id/\n"), 0644))

		output, err := execute(t, "download", "--base-url", server.URL, "--out", out, "--config", cfgPath, "1234/4987")
		require.NoError(t, err)
		assert.Contains(t, output, "using config "+cfgPath)

		_, err = os.Stat(filepath.Join(out, "4987/4987.txt"))
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(out, "4987/4987.html"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad_ref", func(t *testing.T) {
		_, err := execute(t, "download", "--base-url", server.URL, "nonsense")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid feed reference")
	})

	t.Run("requires_refs", func(t *testing.T) {
		_, err := execute(t, "download")
		require.Error(t, err)
	})
}

func TestFlagOverride(t *testing.T) {
	flags := &downloadFlags{}
	cmd := &cobra.Command{}
	bindDownloadFlags(cmd, flags)
	require.NoError(t, cmd.ParseFlags([]string{"--video=false", "--timeout", "30s", "--no-cache", "--ignore", "**/*.gif"}))

	o := flagOverride(cmd, flags)
	cfg := config.Merge(config.Default(), o)

	assert.Equal(t, config.Content{HTML: true, Text: true, Image: true, Video: false}, cfg.Content)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.False(t, cfg.Cache)
	assert.Equal(t, []string{"**/*.gif"}, cfg.Ignore)
	assert.Equal(t, config.DefaultPathTemplate, cfg.PathTemplate, "unchanged flags do not override")
}

func TestFlagOverrideIgnoreGlobs(t *testing.T) {
	flags := &downloadFlags{}
	cmd := &cobra.Command{}
	bindDownloadFlags(cmd, flags)
	require.NoError(t, cmd.ParseFlags([]string{"--ignore", "**/*.{gif,mp4}", "--ignore", "wbg/**"}))

	cfg := config.Merge(config.Default(), flagOverride(cmd, flags))

	assert.Equal(t, []string{"**/*.{gif,mp4}", "wbg/**"}, cfg.Ignore, "commas inside a glob do not split it")
	require.NoError(t, cfg.Validate())
}

func TestRenderSummary(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	ref := feed.Ref{Author: "1234", ID: "1"}
	results := []result{
		{Ref: ref, OK: true},
		{Ref: feed.Ref{Author: "1234", ID: "2"}, Err: &download.PartialFailure{Ref: ref, Failed: []*download.KindError{
			{Kind: download.KindImage, Errs: []error{errors.New("403")}},
			{Kind: download.KindVideo, Errs: []error{errors.New("timeout")}},
		}}},
		{Ref: feed.Ref{Author: "1234", ID: "3"}, Err: errors.New("unexpected status code: 404")},
	}

	table, err := renderSummary(results)
	require.NoError(t, err)
	assert.Contains(t, table, "1234/1")
	assert.Contains(t, table, "image, video")
	assert.Contains(t, table, "unexpected status code: 404")
	assert.Equal(t, 2, countFailed(results))
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "feedgrab version info")
	assert.Contains(t, output, "Platform:")
}
