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
	"bytes"
	"mime"
	"strings"
	"sync"

	"github.com/vincent-petithory/dataurl"
	"gitlab.com/tozd/go/errors"
)

const defaultMIMEType = "application/octet-stream"

var bufferPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

// withDataURL encodes payload as a base64 data URL and hands it to fn.
// The encoding buffer goes back to the pool once fn returns.
func withDataURL(payload []byte, mimeType string, fn func(dataURL string) error) error {
	if mimeType == "" {
		mimeType = defaultMIMEType
	}

	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return errors.Errorf("%w: media type %q: %s", ErrMalformedInput, mimeType, err)
	}
	if strings.Count(mediaType, "/") != 1 {
		return errors.Errorf("%w: media type %q has no subtype", ErrMalformedInput, mimeType)
	}
	pairs := make([]string, 0, 2*len(params))
	for k, v := range params {
		pairs = append(pairs, k, v)
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if _, err := dataurl.New(payload, mediaType, pairs...).WriteTo(buf); err != nil {
		return errors.Errorf("encoding payload: %w", err)
	}

	return fn(buf.String())
}

// IsDataURL reports whether raw uses the data scheme
func IsDataURL(raw string) bool {
	return len(raw) >= 5 && strings.EqualFold(raw[:5], "data:")
}

// 📦 DecodeDataURL returns the media type, parameters included, and the bytes
// of a data URL
func DecodeDataURL(raw string) (string, []byte, error) {
	if !IsDataURL(raw) {
		return "", nil, errors.Errorf("%w: not a data url", ErrMalformedInput)
	}

	du, err := dataurl.DecodeString("data:" + raw[5:])
	if err != nil {
		return "", nil, errors.Errorf("%w: decoding data url: %s", ErrMalformedInput, err)
	}
	return du.MediaType.String(), du.Data, nil
}
