package events

import (
	"context"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stock-reconciler/core/storage/mocks"
	"stock-reconciler/feature/reconcile"
)

func TestArchiver_EnsureBucketCreatesWhenMissing(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "reconciliation").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "reconciliation", mock.Anything).Return(nil)

	archiver := NewArchiver(client, "reconciliation")
	require.NoError(t, archiver.EnsureBucket(context.Background()))

	client.AssertExpectations(t)
}

func TestArchiver_EnsureBucketSkipsExisting(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "reconciliation").Return(true, nil)

	archiver := NewArchiver(client, "reconciliation")
	require.NoError(t, archiver.EnsureBucket(context.Background()))

	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiver_ArchiveWritesTenantScopedObject(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject",
		mock.Anything, "reconciliation", "reports/t1/run-42.json",
		mock.Anything, mock.Anything, mock.Anything,
	).Return(minio.UploadInfo{}, nil)

	archiver := NewArchiver(client, "reconciliation")
	report := &reconcile.Report{TenantID: "t1", AsOf: time.Now(), HomeCurrency: "USD"}

	require.NoError(t, archiver.Archive(context.Background(), "run-42", report))
	client.AssertExpectations(t)
}

func TestMemoryEmitter_RecordsPayloads(t *testing.T) {
	emitter := &MemoryEmitter{}

	require.NoError(t, emitter.Publish(context.Background(), Payload{RunID: "r1", TenantID: "t1", Status: "completed"}))
	require.NoError(t, emitter.Publish(context.Background(), Payload{RunID: "r2", TenantID: "t1", Status: "failed"}))

	published := emitter.Published()
	require.Len(t, published, 2)
	assert.Equal(t, "r1", published[0].RunID)
	assert.Equal(t, "failed", published[1].Status)
}
