// Package objectstore wraps the S3-compatible store that holds issue and
// discussion attachments. Access goes through short-lived presigned URLs;
// the server itself never proxies file bytes.
package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ucentricid/uproject-management/pkg/config"
)

// presignTTL is how long an upload or download URL stays valid.
const presignTTL = 300 * time.Second

// Attachment path categories.
const (
	CategoryIssue      = "issue_attachment_file"
	CategoryDiscussion = "discussion_attachment_file"
)

type Client struct {
	s3        *s3.Client
	presigner *s3.PresignClient

	bucket         string
	publicEndpoint string
}

// New builds the store client from the process configuration. The store
// endpoint may be internal (a container address); presigned URLs are
// rewritten to the public endpoint before they leave the server.
func New(ctx context.Context) (*Client, error) {
	storeConfig := config.GetConfig().ObjectStore

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(storeConfig.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(storeConfig.AccessKey, storeConfig.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load store config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(storeConfig.Endpoint)
		o.UsePathStyle = true // path style is required for MinIO
	})

	return &Client{
		s3:             client,
		presigner:      s3.NewPresignClient(client),
		bucket:         storeConfig.Bucket,
		publicEndpoint: storeConfig.PublicEndpoint,
	}, nil
}

// ObjectKey builds the deterministic object path:
// {category}/{project}/{context}/{user}/{unix-ts}_{filename},
// with every segment sanitized.
func ObjectKey(category, projectName, contextName, userName, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s/%s/%d_%s",
		category,
		sanitizeSegment(projectName),
		sanitizeSegment(contextName),
		sanitizeSegment(userName),
		now.UnixMilli(),
		sanitizeSegment(fileName),
	)
}

// sanitizeSegment replaces everything outside [a-zA-Z0-9.-] with "_".
func sanitizeSegment(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// PresignUpload returns a time-limited PUT URL for key plus the stable
// public URL the uploaded object will be reachable under.
func (c *Client) PresignUpload(ctx context.Context, key, contentType string) (uploadURL, fileURL string, err error) {
	req, err := c.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(o *s3.PresignOptions) {
		o.Expires = presignTTL
	})
	if err != nil {
		return "", "", fmt.Errorf("presign upload: %w", err)
	}

	signed, err := rewriteToEndpoint(req.URL, c.publicEndpoint)
	if err != nil {
		return "", "", err
	}
	return signed, fmt.Sprintf("%s/%s/%s", c.publicEndpoint, c.bucket, key), nil
}

// PresignDownload returns a time-limited GET URL for a stored file URL.
// The response carries a content-disposition header so the browser saves
// the file under its display name.
func (c *Client) PresignDownload(ctx context.Context, fileURL, fileName string) (string, error) {
	key, err := c.KeyFromURL(fileURL)
	if err != nil {
		return "", err
	}

	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(c.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", fileName)),
	}, func(o *s3.PresignOptions) {
		o.Expires = presignTTL
	})
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}

	return rewriteToEndpoint(req.URL, c.publicEndpoint)
}

// DeleteObject removes the object behind a stored file URL.
func (c *Client) DeleteObject(ctx context.Context, fileURL string) error {
	key, err := c.KeyFromURL(fileURL)
	if err != nil {
		return err
	}
	_, err = c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// KeyFromURL extracts the object key from a public file URL, rejecting
// URLs that do not point into our bucket.
func (c *Client) KeyFromURL(fileURL string) (string, error) {
	prefix := fmt.Sprintf("%s/%s/", c.publicEndpoint, c.bucket)
	if !strings.HasPrefix(fileURL, prefix) {
		return "", fmt.Errorf("url %q is not from our bucket", fileURL)
	}
	return strings.TrimPrefix(fileURL, prefix), nil
}

// rewriteToEndpoint swaps the scheme/host/port of a signed URL for the
// public endpoint's. The store may sign with an internal container
// address that clients cannot reach.
func rewriteToEndpoint(signedURL, endpoint string) (string, error) {
	if endpoint == "" {
		return signedURL, nil
	}
	public, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse public endpoint: %w", err)
	}
	signed, err := url.Parse(signedURL)
	if err != nil {
		return "", fmt.Errorf("parse signed url: %w", err)
	}
	signed.Scheme = public.Scheme
	signed.Host = public.Host
	return signed.String(), nil
}
