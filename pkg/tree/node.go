// Package tree talks to the host bookmark tree: the folder that is rendered
// as the bookmarks bar, the container of saved bars, and the bars themselves.
package tree

import "strings"

// Kind tells folders and bookmarks apart.
type Kind int

const (
	// KindFolder is a node that can hold children.
	KindFolder Kind = iota
	// KindBookmark is a leaf node with a URL.
	KindBookmark
)

func (k Kind) String() string {
	switch k {
	case KindBookmark:
		return "bookmark"
	default:
		return "folder"
	}
}

// Node is a single entry in the bookmark tree.
type Node struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId,omitempty"`
	Index    int    `json:"index"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Kind     Kind   `json:"kind"`
}

// IsFolder reports whether n can hold children.
func (n Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// KindOf classifies a raw host node. Anything carrying a URL is a bookmark.
func KindOf(url string) Kind {
	if strings.TrimSpace(url) != "" {
		return KindBookmark
	}
	return KindFolder
}

// Folders filters nodes down to folders, keeping order.
func Folders(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.IsFolder() {
			out = append(out, n)
		}
	}
	return out
}

// Titles returns the titles of nodes in order.
func Titles(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Title
	}
	return out
}
