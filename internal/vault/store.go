// Package vault loads the user's career content. The optimizer only reads
// from the vault.
package vault

import (
	"context"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// Store lists vault content
type Store interface {
	// ListContentItems returns the items matching filter; a nil filter returns everything
	ListContentItems(ctx context.Context, filter *Filter) ([]types.ContentItem, error)
}

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Types []types.ContentType
	// Tags matches items carrying at least one of the tags
	Tags     []string
	ParentID string
}

// Matches reports whether item passes the filter
func (f *Filter) Matches(item *types.ContentItem) bool {
	if f == nil {
		return true
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if item.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.ParentID != "" && item.ParentID != f.ParentID {
		return false
	}
	if len(f.Tags) > 0 {
		for _, tag := range f.Tags {
			if item.HasTag(tag) {
				return true
			}
		}
		return false
	}
	return true
}

// Apply returns the items that pass the filter, preserving order
func (f *Filter) Apply(items []types.ContentItem) []types.ContentItem {
	out := make([]types.ContentItem, 0, len(items))
	for i := range items {
		if f.Matches(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}
