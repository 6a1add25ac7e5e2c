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
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	imagesSelector    = cascadia.MustCompile(SelectorImages)
	videoSelector     = cascadia.MustCompile(SelectorVideo)
	textSelector      = cascadia.MustCompile(SelectorText)
	fullTextSelector  = cascadia.MustCompile(SelectorFullText)
	userCardSelector  = cascadia.MustCompile(SelectorUserCard)
	timestampSelector = cascadia.MustCompile(SelectorTimestamp)
)

// detach copies n and its subtree into a tree of its own. Descendant
// selectors then stop at the item instead of climbing into the page.
func detach(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(detach(child))
	}
	return c
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
