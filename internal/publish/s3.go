package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
)

// s3API is the subset of the S3 client the publisher needs.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads artifacts to an S3 bucket under prefix/artifact-name/.
type S3 struct {
	Bucket string
	Prefix string

	client s3API
}

// NewS3 creates an S3 publisher using the default AWS credential chain.
func NewS3(ctx context.Context, bucket, prefix string) (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3{
		Bucket: bucket,
		Prefix: prefix,
		client: s3.NewFromConfig(cfg),
	}, nil
}

// NewS3WithClient creates an S3 publisher over an existing client.
func NewS3WithClient(client s3API, bucket, prefix string) *S3 {
	return &S3{Bucket: bucket, Prefix: prefix, client: client}
}

// Name identifies the publisher in plans and results.
func (p *S3) Name() string {
	return "s3://" + path.Join(p.Bucket, p.Prefix)
}

// Publish uploads each artifact, detecting the content type from the file
// bytes rather than trusting the extension.
func (p *S3) Publish(ctx context.Context, artifactName string, artifacts []Artifact) ([]string, error) {
	if len(artifacts) == 0 {
		return nil, ErrNoArtifacts
	}

	destinations := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		key := path.Join(p.Prefix, artifactName)
		if len(artifacts) > 1 {
			key = path.Join(p.Prefix, artifactName, filepath.Base(artifact.Path))
		}

		contentType := "application/octet-stream"
		if mtype, err := mimetype.DetectFile(artifact.Path); err == nil {
			contentType = mtype.String()
		}

		f, err := os.Open(artifact.Path)
		if err != nil {
			return destinations, fmt.Errorf("open artifact %q: %w", artifact.Path, err)
		}

		_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(p.Bucket),
			Key:           aws.String(key),
			Body:          f,
			ContentType:   aws.String(contentType),
			ContentLength: aws.Int64(artifact.Size),
		})
		f.Close()
		if err != nil {
			return destinations, fmt.Errorf("upload %q to s3://%s/%s: %w", artifact.Path, p.Bucket, key, err)
		}
		destinations = append(destinations, fmt.Sprintf("s3://%s/%s", p.Bucket, key))
	}
	return destinations, nil
}
