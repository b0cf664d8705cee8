package importer

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/baderkha/sql2doc/pkg/migrate/artifact"
)

// Archiver : keeps a copy of an artifact before it is released
type Archiver interface {
	Archive(ctx context.Context, h artifact.Handle) error
}

// S3Archiver : uploads artifacts under <prefix>/<table>.json
type S3Archiver struct {
	client s3iface.S3API
	open   Opener
	bucket string
	prefix string
}

func NewS3Archiver(client s3iface.S3API, open Opener, bucket string, prefix string) *S3Archiver {
	return &S3Archiver{client: client, open: open, bucket: bucket, prefix: prefix}
}

// Key : object key an artifact is stored under
func (a *S3Archiver) Key(h artifact.Handle) string {
	return path.Join(a.prefix, filepath.Base(h.Path))
}

func (a *S3Archiver) Archive(ctx context.Context, h artifact.Handle) error {
	f, err := a.open.Open(h)
	if err != nil {
		return err
	}
	defer f.Close()

	key := a.Key(h)
	_, err = a.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Body:        f,
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("could not upload s3://%s/%s : %w", a.bucket, key, err)
	}
	return nil
}
