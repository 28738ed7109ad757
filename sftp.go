package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPRemote speaks to an SFTP server over a single ssh session. Remote
// paths are resolved against the configured root directory.
type SFTPRemote struct {
	conn   *ssh.Client
	client *sftp.Client
	root   string
}

func NewSFTPRemote(cfg SFTPConfig) (RemoteClient, error) {
	auth := make([]ssh.AuthMethod, 0)
	if cfg.KeyFile != "" {
		key, keyErr := os.ReadFile(cfg.KeyFile)
		if keyErr != nil {
			return nil, fmt.Errorf("Error reading key file %s: %s", cfg.KeyFile, keyErr)
		}
		signer, signerErr := ssh.ParsePrivateKey(key)
		if signerErr != nil {
			return nil, fmt.Errorf("Error parsing key file %s: %s", cfg.KeyFile, signerErr)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}

	sshConfig := &ssh.ClientConfig{
		User: cfg.Username,
		Auth: auth,
		// TODO: verify host keys against a known_hosts file
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         30 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, dialErr := ssh.Dial("tcp", addr, sshConfig)
	if dialErr != nil {
		return nil, &RemoteError{Kind: ErrConnectionLost, Path: addr, Err: dialErr}
	}
	client, clientErr := sftp.NewClient(conn)
	if clientErr != nil {
		conn.Close()
		return nil, &RemoteError{Kind: ErrConnectionLost, Path: addr, Err: clientErr}
	}

	return &SFTPRemote{conn: conn, client: client, root: cfg.Root}, nil
}

func (s *SFTPRemote) remotePath(path string) string {
	if s.root == "" {
		return path
	}
	return s.root + "/" + path
}

// classify maps an sftp status code onto an error kind. The wire protocol
// has no dedicated "directory not empty" status; servers report it as a
// generic failure, so rmdir callers pass ErrNotEmpty as the failure kind
// and a genuinely failing delete resurfaces from inside the recursion.
func classifySFTPError(path string, err error, failureKind ErrorKind) error {
	kind := ErrUnknown
	var status *sftp.StatusError
	if errors.As(err, &status) {
		switch status.FxCode() {
		case sftp.ErrSSHFxNoSuchFile:
			kind = ErrNotFound
		case sftp.ErrSSHFxPermissionDenied:
			kind = ErrPermissionDenied
		case sftp.ErrSSHFxConnectionLost, sftp.ErrSSHFxNoConnection:
			kind = ErrConnectionLost
		case sftp.ErrSSHFxFailure:
			kind = failureKind
		}
	}
	return &RemoteError{Kind: kind, Path: path, Err: err}
}

func (s *SFTPRemote) MakeDirectory(path string) error {
	full := s.remotePath(path)
	if info, statErr := s.client.Stat(full); statErr == nil && info.IsDir() {
		return &RemoteError{Kind: ErrAlreadyExists, Path: path, Err: fmt.Errorf("directory exists")}
	}
	if mkdirErr := s.client.Mkdir(full); mkdirErr != nil {
		return classifySFTPError(path, mkdirErr, ErrUnknown)
	}
	return nil
}

func (s *SFTPRemote) DeleteDirectory(path string) error {
	if rmdirErr := s.client.RemoveDirectory(s.remotePath(path)); rmdirErr != nil {
		return classifySFTPError(path, rmdirErr, ErrNotEmpty)
	}
	return nil
}

func (s *SFTPRemote) UploadFile(localPath, remotePath string) error {
	fd, openErr := os.Open(localPath)
	if openErr != nil {
		return openErr
	}
	defer fd.Close()

	remote, createErr := s.client.Create(s.remotePath(remotePath))
	if createErr != nil {
		return classifySFTPError(remotePath, createErr, ErrUnknown)
	}
	if _, copyErr := io.Copy(remote, fd); copyErr != nil {
		remote.Close()
		return classifySFTPError(remotePath, copyErr, ErrUnknown)
	}
	if closeErr := remote.Close(); closeErr != nil {
		return classifySFTPError(remotePath, closeErr, ErrUnknown)
	}

	return nil
}

func (s *SFTPRemote) DownloadFile(remotePath, localPath string) error {
	remote, openErr := s.client.Open(s.remotePath(remotePath))
	if openErr != nil {
		return classifySFTPError(remotePath, openErr, ErrUnknown)
	}
	defer remote.Close()

	fd, createErr := os.Create(localPath)
	if createErr != nil {
		return createErr
	}
	defer fd.Close()

	if _, copyErr := io.Copy(fd, remote); copyErr != nil {
		return classifySFTPError(remotePath, copyErr, ErrUnknown)
	}

	return nil
}

func (s *SFTPRemote) DeleteFile(path string) error {
	if delErr := s.client.Remove(s.remotePath(path)); delErr != nil {
		return classifySFTPError(path, delErr, ErrUnknown)
	}
	return nil
}

func (s *SFTPRemote) ListDirectory(path string) ([]RemoteEntry, error) {
	infos, listErr := s.client.ReadDir(s.remotePath(path))
	if listErr != nil {
		return nil, classifySFTPError(path, listErr, ErrUnknown)
	}

	entries := make([]RemoteEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, RemoteEntry{Name: info.Name(), IsDir: info.IsDir()})
	}
	return entries, nil
}

func (s *SFTPRemote) Close() error {
	clientErr := s.client.Close()
	connErr := s.conn.Close()
	if clientErr != nil {
		return clientErr
	}
	return connErr
}
