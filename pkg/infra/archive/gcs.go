package archive

import (
	"context"
	"io"
	"os"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
)

// CloudStorage stores archives as objects of a Google Cloud Storage bucket
type CloudStorage struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.ArchiveDestination = (*CloudStorage)(nil)

// NewCloudStorage creates a destination writing to gs://bucket/prefix/
func NewCloudStorage(client *storage.Client, bucket, prefix string) *CloudStorage {
	return &CloudStorage{client: client, bucket: bucket, prefix: prefix}
}

func (c *CloudStorage) Name() string {
	return "gs://" + path.Join(c.bucket, c.prefix)
}

func (c *CloudStorage) Store(ctx context.Context, localPath, name string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return goerr.Wrap(err, "failed to open archive", goerr.V("path", localPath))
	}
	defer f.Close()

	object := path.Join(c.prefix, name)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := c.client.Bucket(c.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/zip"

	if err := upload(w, cancel, f); err != nil {
		return goerr.Wrap(err, "failed to upload archive",
			goerr.V("bucket", c.bucket),
			goerr.V("object", object))
	}
	return nil
}

// upload copies src into w. A failed copy cancels the writer's context before
// closing it so the object is never committed.
func upload(w io.WriteCloser, cancel context.CancelFunc, src io.Reader) error {
	if _, err := io.Copy(w, src); err != nil {
		cancel()
		_ = w.Close()
		return goerr.Wrap(err, "failed to copy archive")
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object")
	}
	return nil
}
