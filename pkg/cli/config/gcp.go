package config

import (
	"context"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// GCP holds Cloud Storage and Firestore configuration
type GCP struct {
	ProjectID           string
	CredentialsFile     string `masq:"secret"`
	Bucket              string
	BucketPrefix        string
	FirestoreDatabase   string
	FirestoreCollection string
}

// Flags returns CLI flags for GCP configuration
func (c *GCP) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gcp-project",
			Usage:       "Google Cloud project ID",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("PERGAMENE_GCP_PROJECT", "GOOGLE_CLOUD_PROJECT"),
		},
		&cli.StringFlag{
			Name:        "gcp-credentials",
			Usage:       "Service account key file (application default credentials when empty)",
			Destination: &c.CredentialsFile,
			Sources:     cli.EnvVars("PERGAMENE_GCP_CREDENTIALS"),
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket receiving archive ZIP files",
			Destination: &c.Bucket,
			Sources:     cli.EnvVars("PERGAMENE_GCS_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix inside the bucket",
			Value:       "archivio",
			Destination: &c.BucketPrefix,
			Sources:     cli.EnvVars("PERGAMENE_GCS_PREFIX"),
		},
		&cli.StringFlag{
			Name:        "firestore-database",
			Usage:       "Firestore database ID for archive records (disabled when empty)",
			Destination: &c.FirestoreDatabase,
			Sources:     cli.EnvVars("PERGAMENE_FIRESTORE_DATABASE"),
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection for archive records",
			Value:       "archives",
			Destination: &c.FirestoreCollection,
			Sources:     cli.EnvVars("PERGAMENE_FIRESTORE_COLLECTION"),
		},
	}
}

func (c *GCP) clientOptions() []option.ClientOption {
	if c.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(c.CredentialsFile)}
}

// StorageClient returns a Cloud Storage client, or nil when no bucket is configured
func (c *GCP) StorageClient(ctx context.Context) (*storage.Client, error) {
	if c.Bucket == "" {
		return nil, nil
	}
	client, err := storage.NewClient(ctx, c.clientOptions()...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", c.Bucket))
	}
	return client, nil
}

// FirestoreClient returns a Firestore client, or nil when no database is configured
func (c *GCP) FirestoreClient(ctx context.Context) (*firestore.Client, error) {
	if c.FirestoreDatabase == "" {
		return nil, nil
	}
	if c.ProjectID == "" {
		return nil, goerr.New("gcp-project is required for firestore", goerr.V("database", c.FirestoreDatabase))
	}
	client, err := firestore.NewClientWithDatabase(ctx, c.ProjectID, c.FirestoreDatabase, c.clientOptions()...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", c.ProjectID),
			goerr.V("database", c.FirestoreDatabase))
	}
	return client, nil
}
