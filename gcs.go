package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSRemote uses the same marker-object convention as S3Remote.
type GCSRemote struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSRemote(cfg GCSConfig) (RemoteClient, error) {
	client, clientErr := storage.NewClient(context.TODO())
	if clientErr != nil {
		return nil, fmt.Errorf("Error creating gcs client: %+v\n", clientErr)
	}

	return &GCSRemote{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (g *GCSRemote) key(path string) string {
	if g.prefix == "" {
		return path
	}
	return g.prefix + "/" + path
}

func classifyGCSError(path string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return &RemoteError{Kind: ErrNotFound, Path: path, Err: err}
	}
	return &RemoteError{Kind: ErrUnknown, Path: path, Err: err}
}

func (g *GCSRemote) MakeDirectory(path string) error {
	marker := g.key(path) + "/"
	objWriter := g.client.Bucket(g.bucket).Object(marker).NewWriter(context.TODO())
	if closeErr := objWriter.Close(); closeErr != nil {
		return classifyGCSError(path, closeErr)
	}
	return nil
}

func (g *GCSRemote) DeleteDirectory(path string) error {
	marker := g.key(path) + "/"
	objIter := g.client.Bucket(g.bucket).Objects(context.TODO(), &storage.Query{Prefix: marker})
	for {
		attrs, err := objIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return classifyGCSError(path, err)
		}
		if attrs.Name != marker {
			return &RemoteError{Kind: ErrNotEmpty, Path: path, Err: fmt.Errorf("directory not empty")}
		}
	}

	if delErr := g.client.Bucket(g.bucket).Object(marker).Delete(context.TODO()); delErr != nil {
		return classifyGCSError(path, delErr)
	}
	return nil
}

func (g *GCSRemote) UploadFile(localPath, remotePath string) error {
	fd, openErr := os.Open(localPath)
	if openErr != nil {
		return openErr
	}
	defer fd.Close()

	objWriter := g.client.Bucket(g.bucket).Object(g.key(remotePath)).NewWriter(context.TODO())
	if _, uploadErr := io.Copy(objWriter, fd); uploadErr != nil {
		return classifyGCSError(remotePath, uploadErr)
	}
	if closeErr := objWriter.Close(); closeErr != nil {
		return classifyGCSError(remotePath, closeErr)
	}

	return nil
}

func (g *GCSRemote) DownloadFile(remotePath, localPath string) error {
	objReader, openErr := g.client.Bucket(g.bucket).Object(g.key(remotePath)).NewReader(context.TODO())
	if openErr != nil {
		return classifyGCSError(remotePath, openErr)
	}
	defer objReader.Close()

	fd, createErr := os.Create(localPath)
	if createErr != nil {
		return createErr
	}
	defer fd.Close()

	if _, copyErr := io.Copy(fd, objReader); copyErr != nil {
		return classifyGCSError(remotePath, copyErr)
	}
	return nil
}

func (g *GCSRemote) DeleteFile(path string) error {
	if delErr := g.client.Bucket(g.bucket).Object(g.key(path)).Delete(context.TODO()); delErr != nil {
		return classifyGCSError(path, delErr)
	}
	return nil
}

func (g *GCSRemote) ListDirectory(path string) ([]RemoteEntry, error) {
	dirPrefix := g.key(path) + "/"
	objIter := g.client.Bucket(g.bucket).Objects(context.TODO(), &storage.Query{
		Prefix:    dirPrefix,
		Delimiter: "/",
	})

	entries := make([]RemoteEntry, 0)
	for {
		attrs, err := objIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, classifyGCSError(path, err)
		}
		if attrs.Prefix != "" {
			name := strings.TrimSuffix(strings.TrimPrefix(attrs.Prefix, dirPrefix), "/")
			entries = append(entries, RemoteEntry{Name: name, IsDir: true})
			continue
		}
		if attrs.Name == dirPrefix {
			continue
		}
		entries = append(entries, RemoteEntry{
			Name:  strings.TrimPrefix(attrs.Name, dirPrefix),
			IsDir: false,
		})
	}

	return entries, nil
}

func (g *GCSRemote) Close() error {
	return g.client.Close()
}
