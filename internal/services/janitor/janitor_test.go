package janitor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/models"
	"github.com/ternarybob/kintari/internal/storage/badger"
	"github.com/ternarybob/kintari/internal/storage/blob"
)

func setup(t *testing.T) (*Janitor, interfaces.BlobStore, interfaces.DocumentStorage) {
	t.Helper()
	logger := arbor.NewLogger()

	store, err := badger.NewManager(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	blobs, err := blob.NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)

	return New(blobs, store.DocumentStorage(), logger), blobs, store.DocumentStorage()
}

func putBlob(t *testing.T, blobs interfaces.BlobStore, key string) {
	t.Helper()
	_, err := blobs.Put(context.Background(), key, strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
}

func TestSweep_RemovesOrphansOnSecondPass(t *testing.T) {
	j, blobs, docs := setup(t)
	ctx := context.Background()

	putBlob(t, blobs, "doc_kept.pdf")
	putBlob(t, blobs, "doc_orphan.pdf")
	require.NoError(t, docs.SaveDocument(ctx, &models.DocumentRecord{ID: "doc_kept", StoragePath: "doc_kept.pdf"}))

	first, err := j.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc_orphan.pdf"}, first.Pending)
	assert.Empty(t, first.Removed)

	second, err := j.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc_orphan.pdf"}, second.Removed)

	keys, err := blobs.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc_kept.pdf"}, keys)
}

func TestSweep_AdoptedBlobIsNotRemoved(t *testing.T) {
	j, blobs, docs := setup(t)
	ctx := context.Background()

	putBlob(t, blobs, "doc_late.pdf")
	_, err := j.Sweep(ctx)
	require.NoError(t, err)

	// Record saved between sweeps
	require.NoError(t, docs.SaveDocument(ctx, &models.DocumentRecord{ID: "doc_late", StoragePath: "doc_late.pdf"}))

	result, err := j.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, result.Removed)
	assert.Empty(t, result.Pending)
}

func TestSweep_ReportsMissingBlobs(t *testing.T) {
	j, _, docs := setup(t)
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, &models.DocumentRecord{ID: "doc_gone", StoragePath: "doc_gone.pdf"}))

	result, err := j.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc_gone"}, result.MissingBlobs)
	assert.Equal(t, 1, result.Records)
	assert.Equal(t, 0, result.Blobs)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	j, _, _ := setup(t)

	assert.Error(t, j.Start("not a schedule"))
	require.NoError(t, j.Start("0 3 * * *"))
	assert.Error(t, j.Start("0 3 * * *"))
	j.Stop()
}
