package main

import (
	"errors"
	"fmt"
)

// ErrorKind classifies remote failures so callers can branch on them
// explicitly instead of sniffing error strings. NotEmpty in particular is
// control flow, not a failure: it triggers the recursive-delete fallback.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrNotFound
	ErrPermissionDenied
	ErrNotEmpty
	ErrAlreadyExists
	ErrConnectionLost
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNotFound:
		return "not found"
	case ErrPermissionDenied:
		return "permission denied"
	case ErrNotEmpty:
		return "not empty"
	case ErrAlreadyExists:
		return "already exists"
	case ErrConnectionLost:
		return "connection lost"
	default:
		return "unknown"
	}
}

type RemoteError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func remoteErrorKind(err error) ErrorKind {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Kind
	}
	return ErrUnknown
}

type RemoteEntry struct {
	Name  string
	IsDir bool
}

// RemoteClient is an authenticated, already-connected session against the
// remote side. Paths are slash-separated and relative to the remote root.
// The protocol has no recursive delete and no atomic rename; the executor
// compensates for both.
type RemoteClient interface {
	MakeDirectory(path string) error
	DeleteDirectory(path string) error
	UploadFile(localPath, remotePath string) error
	DownloadFile(remotePath, localPath string) error
	DeleteFile(path string) error
	ListDirectory(path string) ([]RemoteEntry, error)
	Close() error
}
