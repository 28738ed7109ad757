package main

import (
	"fmt"
	"sync"
)

// MockRemoteClient is an in-memory remote filesystem that records every
// request it receives. Failures can be scripted per operation+path via
// FailOn, e.g. FailOn["upload b/c.txt"] = someErr.
type MockRemoteClient struct {
	MkdirRequests  []string
	RmdirRequests  []string
	UploadRequests []MockUploadRequest
	DeleteRequests []string
	ListRequests   []string
	FailOn         map[string]error

	files map[string]bool
	dirs  map[string]bool
	lock  sync.Mutex
}

type MockUploadRequest struct {
	LocalPath  string
	RemotePath string
}

func NewMockRemoteClient(files []string, dirs []string) *MockRemoteClient {
	client := &MockRemoteClient{
		MkdirRequests:  make([]string, 0),
		RmdirRequests:  make([]string, 0),
		UploadRequests: make([]MockUploadRequest, 0),
		DeleteRequests: make([]string, 0),
		ListRequests:   make([]string, 0),
		FailOn:         make(map[string]error),
		files:          make(map[string]bool),
		dirs:           make(map[string]bool),
	}
	for _, file := range files {
		client.files[file] = true
	}
	for _, dir := range dirs {
		client.dirs[dir] = true
	}
	return client
}

func (m *MockRemoteClient) scripted(op, path string) error {
	return m.FailOn[fmt.Sprintf("%s %s", op, path)]
}

func (m *MockRemoteClient) HasFile(path string) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.files[path]
}

func (m *MockRemoteClient) HasDirectory(path string) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.dirs[path]
}

func (m *MockRemoteClient) MakeDirectory(path string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.MkdirRequests = append(m.MkdirRequests, path)
	if err := m.scripted("mkdir", path); err != nil {
		return err
	}
	if m.dirs[path] {
		return &RemoteError{Kind: ErrAlreadyExists, Path: path, Err: fmt.Errorf("directory exists")}
	}
	m.dirs[path] = true
	return nil
}

func (m *MockRemoteClient) DeleteDirectory(path string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.RmdirRequests = append(m.RmdirRequests, path)
	if err := m.scripted("rmdir", path); err != nil {
		return err
	}
	if !m.dirs[path] {
		return &RemoteError{Kind: ErrNotFound, Path: path, Err: fmt.Errorf("no such directory")}
	}
	for file := range m.files {
		if isAncestor(path, file) {
			return &RemoteError{Kind: ErrNotEmpty, Path: path, Err: fmt.Errorf("directory not empty")}
		}
	}
	for dir := range m.dirs {
		if isAncestor(path, dir) {
			return &RemoteError{Kind: ErrNotEmpty, Path: path, Err: fmt.Errorf("directory not empty")}
		}
	}
	delete(m.dirs, path)
	return nil
}

func (m *MockRemoteClient) UploadFile(localPath, remotePath string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.UploadRequests = append(m.UploadRequests, MockUploadRequest{LocalPath: localPath, RemotePath: remotePath})
	if err := m.scripted("upload", remotePath); err != nil {
		return err
	}
	m.files[remotePath] = true
	return nil
}

func (m *MockRemoteClient) DownloadFile(remotePath, localPath string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if err := m.scripted("download", remotePath); err != nil {
		return err
	}
	if !m.files[remotePath] {
		return &RemoteError{Kind: ErrNotFound, Path: remotePath, Err: fmt.Errorf("no such file")}
	}
	return nil
}

func (m *MockRemoteClient) DeleteFile(path string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.DeleteRequests = append(m.DeleteRequests, path)
	if err := m.scripted("delete", path); err != nil {
		return err
	}
	if !m.files[path] {
		return &RemoteError{Kind: ErrNotFound, Path: path, Err: fmt.Errorf("no such file")}
	}
	delete(m.files, path)
	return nil
}

func (m *MockRemoteClient) ListDirectory(path string) ([]RemoteEntry, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.ListRequests = append(m.ListRequests, path)
	if err := m.scripted("list", path); err != nil {
		return nil, err
	}

	entries := make([]RemoteEntry, 0)
	depth := pathDepth(path) + 1
	for file := range m.files {
		if isAncestor(path, file) && pathDepth(file) == depth {
			entries = append(entries, RemoteEntry{Name: pathSegments(file)[depth-1], IsDir: false})
		}
	}
	for dir := range m.dirs {
		if isAncestor(path, dir) && pathDepth(dir) == depth {
			entries = append(entries, RemoteEntry{Name: pathSegments(dir)[depth-1], IsDir: true})
		}
	}
	return entries, nil
}

func (m *MockRemoteClient) Close() error {
	return nil
}
