package importer

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MaxObjectSize caps how much of an uploaded object is read into memory.
const MaxObjectSize = 10 << 20

// ObjectGetter is the slice of the S3 client the importer needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// FetchObject downloads bucket/key. Keys arrive URL-encoded in S3 notifications.
func FetchObject(ctx context.Context, client ObjectGetter, bucket, key string) ([]byte, error) {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		decoded = key
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(decoded),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object s3://%s/%s: %w", bucket, decoded, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(io.LimitReader(out.Body, MaxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	if len(body) > MaxObjectSize {
		return nil, fmt.Errorf("object s3://%s/%s exceeds %d bytes", bucket, decoded, MaxObjectSize)
	}
	return body, nil
}
