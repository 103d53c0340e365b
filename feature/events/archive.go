package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/minio/minio-go/v7"

	"stock-reconciler/core/storage"
	"stock-reconciler/feature/reconcile"
)

// Archiver writes full run reports to object storage, one JSON document per
// run under reports/<tenant>/<run>.json. Like publishing, archiving is
// advisory and never fails a run.
type Archiver struct {
	client storage.Client
	bucket string
}

// NewArchiver creates an archiver writing into bucket.
func NewArchiver(client storage.Client, bucket string) *Archiver {
	return &Archiver{client: client, bucket: bucket}
}

// EnsureBucket creates the archive bucket if it does not exist yet.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check archive bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create archive bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Archive stores the report for the given run.
func (a *Archiver) Archive(ctx context.Context, runID string, report *reconcile.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report for run %s: %w", runID, err)
	}

	object := fmt.Sprintf("reports/%s/%s.json", report.TenantID, runID)
	_, err = a.client.PutObject(ctx, a.bucket, object, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("archive report %s: %w", object, err)
	}
	return nil
}
