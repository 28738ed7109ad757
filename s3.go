package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Remote maps the directory-oriented remote contract onto a flat bucket.
// Directories are zero-byte marker objects ending in "/", so an empty
// directory survives a listing and rmdir has something to delete.
type S3Remote struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Remote(cfg S3Config) (RemoteClient, error) {
	awsCfg, cfgErr := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithSharedConfigProfile(cfg.Profile),
		awsconfig.WithRegion(cfg.Region))
	if cfgErr != nil {
		return nil, fmt.Errorf("Error creating s3 client: %+v\n", cfgErr)
	}

	return &S3Remote{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (s *S3Remote) key(path string) string {
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}

func (s *S3Remote) MakeDirectory(path string) error {
	marker := s.key(path) + "/"
	_, putErr := s.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(marker),
		Body:   bytes.NewReader(nil),
	})
	if putErr != nil {
		return &RemoteError{Kind: ErrUnknown, Path: path, Err: putErr}
	}
	return nil
}

func (s *S3Remote) DeleteDirectory(path string) error {
	marker := s.key(path) + "/"
	listParams := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(marker),
	}
	paginator := s3.NewListObjectsV2Paginator(s.client, listParams, func(o *s3.ListObjectsV2PaginatorOptions) {})
	for paginator.HasMorePages() {
		currentPage, pageErr := paginator.NextPage(context.TODO())
		if pageErr != nil {
			return &RemoteError{Kind: ErrUnknown, Path: path, Err: pageErr}
		}
		for _, object := range currentPage.Contents {
			if *object.Key != marker {
				return &RemoteError{Kind: ErrNotEmpty, Path: path, Err: fmt.Errorf("directory not empty")}
			}
		}
	}

	_, delErr := s.client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(marker),
	})
	if delErr != nil {
		return &RemoteError{Kind: ErrUnknown, Path: path, Err: delErr}
	}
	return nil
}

func (s *S3Remote) UploadFile(localPath, remotePath string) error {
	fd, openErr := os.Open(localPath)
	if openErr != nil {
		return openErr
	}
	defer fd.Close()

	uploader := manager.NewUploader(s.client)
	_, putErr := uploader.Upload(context.TODO(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(remotePath)),
		Body:   fd,
	})
	if putErr != nil {
		return &RemoteError{Kind: ErrUnknown, Path: remotePath, Err: putErr}
	}
	return nil
}

func (s *S3Remote) DownloadFile(remotePath, localPath string) error {
	fd, createErr := os.Create(localPath)
	if createErr != nil {
		return createErr
	}
	defer fd.Close()

	downloader := manager.NewDownloader(s.client)
	_, getErr := downloader.Download(context.TODO(), fd, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(remotePath)),
	})
	if getErr != nil {
		var notFound *types.NoSuchKey
		if errors.As(getErr, &notFound) {
			return &RemoteError{Kind: ErrNotFound, Path: remotePath, Err: getErr}
		}
		return &RemoteError{Kind: ErrUnknown, Path: remotePath, Err: getErr}
	}
	return nil
}

func (s *S3Remote) DeleteFile(path string) error {
	_, delErr := s.client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if delErr != nil {
		return &RemoteError{Kind: ErrUnknown, Path: path, Err: delErr}
	}
	return nil
}

func (s *S3Remote) ListDirectory(path string) ([]RemoteEntry, error) {
	dirPrefix := s.key(path) + "/"
	listParams := &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(dirPrefix),
		Delimiter: aws.String("/"),
	}

	entries := make([]RemoteEntry, 0)
	paginator := s3.NewListObjectsV2Paginator(s.client, listParams, func(o *s3.ListObjectsV2PaginatorOptions) {})
	for paginator.HasMorePages() {
		currentPage, pageErr := paginator.NextPage(context.TODO())
		if pageErr != nil {
			return nil, &RemoteError{Kind: ErrUnknown, Path: path, Err: pageErr}
		}
		for _, object := range currentPage.Contents {
			if *object.Key == dirPrefix {
				continue
			}
			entries = append(entries, RemoteEntry{
				Name:  strings.TrimPrefix(*object.Key, dirPrefix),
				IsDir: false,
			})
		}
		for _, commonPrefix := range currentPage.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(*commonPrefix.Prefix, dirPrefix), "/")
			entries = append(entries, RemoteEntry{Name: name, IsDir: true})
		}
	}

	return entries, nil
}

func (s *S3Remote) Close() error {
	return nil
}
