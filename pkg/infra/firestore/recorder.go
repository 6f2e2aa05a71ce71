package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/pergamene/pergamene/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultCollection holds one document per archived batch
const DefaultCollection = "archives"

// Recorder keeps archive results in a Firestore collection, keyed by archive name
type Recorder struct {
	client     *firestore.Client
	collection string
}

var _ interfaces.ArchiveRecorder = (*Recorder)(nil)

// NewRecorder creates a recorder writing into collection
func NewRecorder(client *firestore.Client, collection string) *Recorder {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Recorder{client: client, collection: collection}
}

// Record creates the archive document. A document that already exists is left untouched.
func (r *Recorder) Record(ctx context.Context, result *model.ArchiveResult) error {
	doc := r.client.Collection(r.collection).Doc(result.Name)

	if _, err := doc.Create(ctx, result); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			ctxlog.From(ctx).Warn("Archive record already exists", "name", result.Name)
			return nil
		}
		return goerr.Wrap(err, "failed to create archive record",
			goerr.V("collection", r.collection),
			goerr.V("name", result.Name))
	}

	ctxlog.From(ctx).Info("Archive recorded", "collection", r.collection, "name", result.Name)
	return nil
}
