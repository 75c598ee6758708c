// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides an S3-compatible object storage client for the
// casebook media files. Images and their precomputed renditions live in the
// media bucket; uploaded video files live in the documents bucket. It wraps
// the AWS SDK v2 and is configured for path-style access (required by
// CEPH/Hetzner).
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Client wraps an S3 client for media operations on the two casebook buckets.
type Client struct {
	s3              *s3.Client
	mediaBucket     string
	documentsBucket string
	endpoint        string
	publicURL       string // optional CDN/direct URL for public files
}

// New creates an S3 storage client with path-style addressing. Returns
// (nil, nil) if endpoint or credentials are empty, allowing the app to start
// without storage: URLs are then built from bucket/key alone.
func New(endpoint, region, accessKey, secretKey, mediaBucket, documentsBucket, publicURL string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}

	// Strip trailing slash from endpoint for consistent URL building.
	endpoint = strings.TrimRight(endpoint, "/")

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:              s3Client,
		mediaBucket:     mediaBucket,
		documentsBucket: documentsBucket,
		endpoint:        endpoint,
		publicURL:       strings.TrimRight(publicURL, "/"),
	}, nil
}

// Upload stores an object in the specified bucket with public-read ACL so
// exported URLs can be served directly.
func (c *Client) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	}

	_, err := c.s3.PutObject(ctx, input)
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Delete removes an object from the specified bucket.
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

// MediaBucket returns the name of the image/rendition bucket.
func (c *Client) MediaBucket() string {
	return c.mediaBucket
}

// DocumentsBucket returns the name of the video/document bucket.
func (c *Client) DocumentsBucket() string {
	return c.documentsBucket
}

// FileURL builds the public URL for an object. Uses the configured public
// URL prefix if set, otherwise a path-style endpoint URL. Pure string
// building, no network calls, so exports work offline.
func FileURL(endpoint, publicURL, bucket, key string) string {
	if publicURL != "" {
		return strings.TrimRight(publicURL, "/") + "/" + bucket + "/" + key
	}
	if endpoint != "" {
		return strings.TrimRight(endpoint, "/") + "/" + bucket + "/" + key
	}
	return "/" + bucket + "/" + key
}

// FileURL returns the public URL for an object in one of the client's buckets.
func (c *Client) FileURL(bucket, key string) string {
	return FileURL(c.endpoint, c.publicURL, bucket, key)
}
