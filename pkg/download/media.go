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

package download

import (
	"net/url"
	"path"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/feedgrab/pkg/transport"
)

// qualityKey names the preferred entry of a video-sources descriptor
const qualityKey = "qType"

// 🖼️ largeImage rewrites a picture src to its full resolution variant and
// returns it with the file name the picture is stored under
func largeImage(src string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return "", "", errors.Errorf("%w: parsing image src %q: %s", transport.ErrMalformedInput, src, err)
	}
	if u.Host == "" {
		return "", "", errors.Errorf("%w: image src %q has no host", transport.ErrMalformedInput, src)
	}

	filename := lastSegment(u.Path)
	if filename == "" {
		return "", "", errors.Errorf("%w: image src %q has no file name", transport.ErrMalformedInput, src)
	}

	large := url.URL{Scheme: "https", Host: u.Host, Path: "/large/" + filename}
	return large.String(), filename, nil
}

// 🎬 preferredVideo picks the source named by the descriptor's quality key,
// always over https, and returns it with its file name
func preferredVideo(descriptor string) (string, string, error) {
	values, err := url.ParseQuery(descriptor)
	if err != nil {
		return "", "", errors.Errorf("%w: parsing video sources: %s", transport.ErrMalformedInput, err)
	}

	quality := values.Get(qualityKey)
	if quality == "" {
		return "", "", errors.Errorf("%w: video sources have no %s", transport.ErrMalformedInput, qualityKey)
	}
	source := values.Get(quality)
	if source == "" {
		return "", "", errors.Errorf("%w: video sources have no entry for quality %q", transport.ErrMalformedInput, quality)
	}
	if strings.HasPrefix(source, "http:") {
		source = "https:" + strings.TrimPrefix(source, "http:")
	}

	u, err := url.Parse(source)
	if err != nil {
		return "", "", errors.Errorf("%w: parsing video url %q: %s", transport.ErrMalformedInput, source, err)
	}
	filename := lastSegment(u.Path)
	if filename == "" {
		return "", "", errors.Errorf("%w: video url %q has no file name", transport.ErrMalformedInput, source)
	}
	return source, filename, nil
}

func lastSegment(p string) string {
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	return path.Base(p)
}
