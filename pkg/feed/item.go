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

package feed

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Selectors for the parts of a feed the downloader cares about
const (
	SelectorImages    = ".WB_media_wrap .WB_pic img"
	SelectorVideo     = `li.WB_video[node-type="fl_h5_video"][video-sources]`
	SelectorText      = `[node-type="feed_list_content"]`
	SelectorFullText  = `[node-type="feed_list_content_full"]`
	SelectorUserCard  = ".WB_info a[usercard]"
	SelectorTimestamp = ".WB_from a[date]"

	// AttrID holds the item identifier on the feed element
	AttrID = "mid"
)

// ErrItemNotFound is returned when a page holds no feed with the requested id
var ErrItemNotFound = errors.Base("feed item not found")

// 📰 Item is one parsed feed post, rooted at its feed element
type Item struct {
	root *html.Node
}

// 🏭 NewItem wraps a copy of an already parsed feed element
func NewItem(root *html.Node) *Item {
	return &Item{root: detach(root)}
}

// 📥 Parse reads an html page and returns the feed whose id is id.
// An empty id selects the first feed on the page.
func Parse(r io.Reader, id string) (*Item, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.Errorf("parsing html: %w", err)
	}

	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode {
			if mid, ok := attr(n, AttrID); ok && mid != "" && (id == "" || mid == id) {
				found = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if found == nil {
		return nil, errors.Errorf("%w: %q", ErrItemNotFound, id)
	}
	return NewItem(found), nil
}

// Root returns the item's own copy of the feed element
func (i *Item) Root() *html.Node {
	return i.root
}

// ID returns the item identifier, "" when the attribute is missing
func (i *Item) ID() string {
	id, _ := attr(i.root, AttrID)
	return strings.TrimSpace(id)
}

// 👤 AuthorIDs returns author ids in document order, without duplicates.
// The feed's own tbinfo attribute comes first, then user cards.
func (i *Item) AuthorIDs() []string {
	var ids []string
	seen := map[string]bool{}
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if tbinfo, ok := attr(i.root, "tbinfo"); ok {
		if q, err := url.ParseQuery(tbinfo); err == nil {
			add(q.Get("ouid"))
		}
	}
	for _, n := range userCardSelector.MatchAll(i.root) {
		card, _ := attr(n, "usercard")
		if q, err := url.ParseQuery(card); err == nil {
			add(q.Get("id"))
		}
	}
	return ids
}

// 🕰️ Timestamps returns publish times as epoch milliseconds, in document order
func (i *Item) Timestamps() []string {
	var out []string
	for _, n := range timestampSelector.MatchAll(i.root) {
		if date, _ := attr(n, "date"); date != "" {
			out = append(out, date)
		}
	}
	return out
}

// 📝 PlainText returns the readable post text. Line breaks become "\n" and
// inline emoticon images contribute their alt text.
func (i *Item) PlainText() string {
	content := fullTextSelector.MatchFirst(i.root)
	if content == nil {
		content = textSelector.MatchFirst(i.root)
	}
	if content == nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Br:
				b.WriteString("\n")
				return
			case atom.Img:
				if alt, ok := attr(n, "alt"); ok {
					b.WriteString(alt)
				}
				return
			case atom.Script, atom.Style:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(content)

	return strings.TrimSpace(b.String())
}

// 🧾 OuterHTML renders the feed element and its subtree
func (i *Item) OuterHTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, i.root); err != nil {
		return "", errors.Errorf("rendering feed: %w", err)
	}
	return buf.String(), nil
}

// 🖼️ Images returns the src of every attached picture
func (i *Item) Images() []string {
	var out []string
	for _, n := range imagesSelector.MatchAll(i.root) {
		if src, _ := attr(n, "src"); src != "" {
			out = append(out, src)
		}
	}
	return out
}

// 🎬 VideoSources returns the raw video-sources attribute of the video
// container, false when the feed has no video.
func (i *Item) VideoSources() (string, bool) {
	n := videoSelector.MatchFirst(i.root)
	if n == nil {
		return "", false
	}
	return attr(n, "video-sources")
}
