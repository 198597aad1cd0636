package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/resume-optimizer/internal/schemas"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Document is the on-disk vault format
type Document struct {
	UserID string              `json:"user_id,omitempty"`
	Items  []types.ContentItem `json:"items"`
}

// FileStore serves a JSON vault file. The file is read and validated on
// first use and cached afterwards.
type FileStore struct {
	path string

	once  sync.Once
	items []types.ContentItem
	err   error
}

// NewFileStore creates a store for the vault at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// ListContentItems returns the filtered vault items
func (s *FileStore) ListContentItems(ctx context.Context, filter *Filter) ([]types.ContentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.once.Do(func() {
		s.items, s.err = LoadFile(s.path)
	})
	if s.err != nil {
		return nil, s.err
	}
	return filter.Apply(s.items), nil
}

// LoadFile reads and validates a vault file
func LoadFile(path string) ([]types.ContentItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Source: path, Message: "failed to read vault file", Cause: err}
	}
	items, err := Parse(data)
	if err != nil {
		return nil, &Error{Source: path, Message: "invalid vault", Cause: err}
	}
	return items, nil
}

// Parse validates a vault document against the content vault schema and
// decodes its items. Items without an ID are assigned a random UUID;
// duplicate IDs are rejected.
func Parse(data []byte) ([]types.ContentItem, error) {
	if err := schemas.Validate(schemas.ContentVault, data); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode vault: %w", err)
	}

	seen := make(map[string]bool, len(doc.Items))
	items := make([]types.ContentItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("duplicate item id %q", item.ID)
		}
		seen[item.ID] = true
		items = append(items, item)
	}
	return items, nil
}
