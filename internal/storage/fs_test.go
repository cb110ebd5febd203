package storage

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
)

func TestFSClient_RoundTrip(t *testing.T) {
	client := NewFSClient(t.TempDir())
	ctx := context.Background()

	exists, err := client.Exists(ctx, "datasets/BBCA.csv")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, client.UploadText(ctx, "datasets/BBCA.csv", "date,close\n2024-03-08,100\n", "text/csv"))

	exists, err = client.Exists(ctx, "datasets/BBCA.csv")
	require.NoError(t, err)
	assert.True(t, exists)

	content, err := client.DownloadText(ctx, "datasets/BBCA.csv")
	require.NoError(t, err)
	assert.Contains(t, content, "2024-03-08")
}

func TestFSClient_DownloadMissing(t *testing.T) {
	client := NewFSClient(t.TempDir())

	_, err := client.DownloadText(context.Background(), "datasets/NOPE.csv")
	require.Error(t, err)
	assert.Equal(t, contracts.KindSubjectNotFound, contracts.Classify(err))
}

func TestFSClient_ListPaths(t *testing.T) {
	client := NewFSClient(t.TempDir())
	ctx := context.Background()

	require.NoError(t, client.UploadText(ctx, "datasets/BBCA.csv", "x", "text/csv"))
	require.NoError(t, client.UploadText(ctx, "datasets/TLKM.csv", "x", "text/csv"))
	require.NoError(t, client.UploadText(ctx, "rrg/stock/BBCA.csv", "x", "text/csv"))

	paths, err := client.ListPaths(ctx, "datasets/")
	require.NoError(t, err)
	sort.Strings(paths)
	assert.Equal(t, []string{"datasets/BBCA.csv", "datasets/TLKM.csv"}, paths)

	empty, err := client.ListPaths(ctx, "missing/")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Put("datasets/BBCA.csv", "date,close\n")

	content, err := m.DownloadText(ctx, "datasets/BBCA.csv")
	require.NoError(t, err)
	assert.Equal(t, "date,close\n", content)
	assert.Equal(t, 1, m.Downloads("datasets/BBCA.csv"))

	_, err = m.DownloadText(ctx, "datasets/NOPE.csv")
	require.Error(t, err)
	assert.Equal(t, contracts.KindSubjectNotFound, contracts.Classify(err))

	require.NoError(t, m.UploadText(ctx, "rrg/stock/BBCA.csv", "data", "text/csv"))
	assert.Equal(t, 1, m.Uploads())
}
