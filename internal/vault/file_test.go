package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/schemas"
	"github.com/jonathan/resume-optimizer/internal/types"
)

const sampleVault = `{
	"user_id": "u-1",
	"items": [
		{"id": "job-1", "type": "job_entry", "content": "Engineer at Acme", "metadata": {"company": "Acme", "start_date": "2019-01"}},
		{"type": "accomplishment", "content": "Led migration", "parent_id": "job-1", "tags": ["leadership"]},
		{"id": "skill-1", "type": "skill", "content": "Go"}
	]
}`

func writeVault(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vault.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParse(t *testing.T) {
	items, err := Parse([]byte(sampleVault))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "job-1", items[0].ID)
	assert.Equal(t, "Acme", items[0].Metadata["company"])

	_, err = uuid.Parse(items[1].ID)
	assert.NoError(t, err, "missing IDs are assigned")
	assert.Equal(t, "job-1", items[1].ParentID)
	assert.Equal(t, types.ContentAccomplishment, items[1].Type)
}

func TestParse_Invalid(t *testing.T) {
	t.Run("schema violation", func(t *testing.T) {
		_, err := Parse([]byte(`{"items": [{"type": "hobby", "content": "Chess"}]}`))
		var validationErr *schemas.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		_, err := Parse([]byte(`{"items": [{"id": "a", "type": "skill", "content": "Go"}, {"id": "a", "type": "skill", "content": "Rust"}]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `duplicate item id "a"`)
	})
}

func TestFileStore_ListContentItems(t *testing.T) {
	store := NewFileStore(writeVault(t, sampleVault))
	ctx := context.Background()

	all, err := store.ListContentItems(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	again, err := store.ListContentItems(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, all[1].ID, again[1].ID, "generated IDs are stable for the store's lifetime")

	skills, err := store.ListContentItems(ctx, &Filter{Types: []types.ContentType{types.ContentSkill}})
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, "skill-1", skills[0].ID)

	children, err := store.ListContentItems(ctx, &Filter{ParentID: "job-1"})
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

func TestFileStore_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileStore(filepath.Join(t.TempDir(), "missing.json")).ListContentItems(context.Background(), nil)
		var vaultErr *Error
		require.ErrorAs(t, err, &vaultErr)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid document", func(t *testing.T) {
		_, err := NewFileStore(writeVault(t, `{"entries": []}`)).ListContentItems(context.Background(), nil)
		var validationErr *schemas.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewFileStore(writeVault(t, sampleVault)).ListContentItems(ctx, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
