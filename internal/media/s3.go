package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/inkpress/inkpress/internal/util"
)

type S3Uploader struct { // implements Uploader
	client *s3.Client

	bucket        string
	publicBaseURL string
}

func NewS3Uploader(accessKeyID, accessKeySecret, baseEndpoint, bucket, publicBaseURL string) *S3Uploader {
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		mediaLogger.Fatal().Err(err).Msg("Error initializing S3 client")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(baseEndpoint)
	})

	return &S3Uploader{
		client: client,

		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// Upload writes the image bytes under a content-addressed key and returns
// the public URL. Identical payloads share one object, so re-publishing a
// post with the same cover never duplicates storage.
func (u *S3Uploader) Upload(ctx context.Context, contentType string, data []byte) (string, error) {
	key := objectKey(contentType, data)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("error putting object %s: %w", key, err)
	}

	mediaLogger.Info().Str("key", key).Int("size", len(data)).Msg("Cover image uploaded")
	return u.publicBaseURL + "/" + key, nil
}

func objectKey(contentType string, data []byte) string {
	return "covers/" + util.ContentHash(data) + extensionFor(contentType)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
