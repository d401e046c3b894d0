// Package storage wraps the blob store used for athlete media.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	credentialspb "cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	gcs "cloud.google.com/go/storage"
)

// BlobStore is the port the services depend on. Upload returns a durable
// URL for the stored object; Delete is expected to be called best-effort.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, path string) error
}

// GCS implements BlobStore on a Cloud Storage bucket.
type GCS struct {
	client *gcs.Client
	bucket string

	// Optional: when signerEmail is set, download URLs are V4-signed
	// through IAM SignBlob so private buckets work without key files.
	iam         *credentials.IamCredentialsClient
	signerEmail string
}

func NewGCS(client *gcs.Client, bucket, signerEmail string) *GCS {
	g := &GCS{client: client, bucket: bucket, signerEmail: signerEmail}
	if signerEmail != "" {
		// IAM client is optional; only needed for signed URLs.
		g.iam, _ = credentials.NewIamCredentialsClient(context.Background())
	}
	return g
}

func (g *GCS) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	if g.bucket == "" {
		return "", fmt.Errorf("storage bucket is not configured")
	}

	w := g.client.Bucket(g.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", path, err)
	}

	return g.downloadURL(ctx, path)
}

func (g *GCS) Delete(ctx context.Context, path string) error {
	err := g.client.Bucket(g.bucket).Object(path).Delete(ctx)
	if err == gcs.ErrObjectNotExist {
		return nil
	}
	return err
}

func (g *GCS) downloadURL(ctx context.Context, path string) (string, error) {
	if g.signerEmail == "" || g.iam == nil {
		// Public-read bucket layout.
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, path), nil
	}

	opts := &gcs.SignedURLOptions{
		Scheme:         gcs.SigningSchemeV4,
		Method:         "GET",
		Expires:        time.Now().Add(7 * 24 * time.Hour),
		GoogleAccessID: g.signerEmail,
		SignBytes: func(b []byte) ([]byte, error) {
			name := fmt.Sprintf("projects/-/serviceAccounts/%s", g.signerEmail)
			resp, err := g.iam.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    name,
				Payload: b,
			})
			if err != nil {
				return nil, err
			}
			return resp.SignedBlob, nil
		},
	}

	url, err := gcs.SignedURL(g.bucket, path, opts)
	if err != nil {
		return "", fmt.Errorf("failed to sign url (check service account + permissions): %v", err)
	}
	return url, nil
}
