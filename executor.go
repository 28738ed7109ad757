package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

// semaphore bounds concurrent uploads; sized from AppConfig.Concurrency on startup
var semaphore chan int

// ResultMap records the outcome of every remote operation attempted during
// a push, keyed by relative path. A nil value means the operation
// succeeded; a missing key means it was never attempted.
type ResultMap struct {
	Upload map[string]error
	Delete map[string]error
	Mkdir  map[string]error
	Rmdir  map[string]error
	lock   *sync.Mutex
}

func newResultMap() *ResultMap {
	return &ResultMap{
		Upload: make(map[string]error),
		Delete: make(map[string]error),
		Mkdir:  make(map[string]error),
		Rmdir:  make(map[string]error),
		lock:   new(sync.Mutex),
	}
}

func (r *ResultMap) AddUploadResult(key string, result error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Upload[key] = result
}

func (r *ResultMap) AddDeleteResult(key string, result error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Delete[key] = result
}

func (r *ResultMap) AddMkdirResult(key string, result error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Mkdir[key] = result
}

func (r *ResultMap) AddRmdirResult(key string, result error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Rmdir[key] = result
}

func (r *ResultMap) HasErrors() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, results := range []map[string]error{r.Upload, r.Delete, r.Mkdir, r.Rmdir} {
		for _, result := range results {
			if result != nil {
				return true
			}
		}
	}
	return false
}

// applyOperations runs the plan against the remote in the only safe order:
// delete directories, delete files, create directories, upload files.
// Deletes and mkdirs are sequential and stop on the first error. Uploads
// run on semaphore-bounded goroutines; once one fails no new uploads are
// launched, in-flight ones drain, and the push fails.
func applyOperations(client RemoteClient, ops *OperationSet, localRoot string, resultMap *ResultMap) error {
	for _, dir := range ops.DirsToDelete {
		rmdirErr := deleteDirectoryRecursive(client, dir)
		resultMap.AddRmdirResult(dir, rmdirErr)
		if rmdirErr != nil {
			log.Warn(fmt.Sprintf("Error deleting remote directory %s: %s", dir, rmdirErr))
			return fmt.Errorf("Error deleting remote directory %s: %s", dir, rmdirErr)
		}
		log.Info(fmt.Sprintf("Deleted remote directory %s", dir))
	}

	for _, file := range ops.FilesToDelete {
		delErr := client.DeleteFile(file)
		resultMap.AddDeleteResult(file, delErr)
		if delErr != nil {
			log.Warn(fmt.Sprintf("Error deleting remote file %s: %s", file, delErr))
			return fmt.Errorf("Error deleting remote file %s: %s", file, delErr)
		}
		log.Info(fmt.Sprintf("Deleted remote file %s", file))
	}

	if mkdirErr := createDirectories(client, ops, resultMap); mkdirErr != nil {
		return mkdirErr
	}

	var wg sync.WaitGroup
	for _, file := range ops.FilesToUpload {
		if resultMap.HasErrors() {
			break
		}
		wg.Add(1)
		go doUploadFile(client, localRoot, file, &wg, resultMap)
	}
	wg.Wait()

	for _, file := range ops.FilesToUpload {
		if uploadErr, attempted := resultMap.Upload[file]; attempted && uploadErr != nil {
			return fmt.Errorf("Error uploading %s: %s", file, uploadErr)
		}
	}

	return nil
}

// createDirectories makes every directory the plan needs, root-to-leaf:
// the explicitly scheduled ones plus every missing ancestor of an upload
// target. Creating a directory that already exists is a no-op.
func createDirectories(client RemoteClient, ops *OperationSet, resultMap *ResultMap) error {
	needed := make(map[string]bool)
	for _, dir := range ops.DirsToCreate {
		needed[dir] = true
		for _, ancestor := range ancestorsOf(dir) {
			needed[ancestor] = true
		}
	}
	for _, file := range ops.FilesToUpload {
		for _, ancestor := range ancestorsOf(file) {
			needed[ancestor] = true
		}
	}

	ordered := make([]string, 0, len(needed))
	for dir := range needed {
		ordered = append(ordered, dir)
	}
	sortByDepth(ordered)

	for _, dir := range ordered {
		mkdirErr := client.MakeDirectory(dir)
		if mkdirErr != nil && remoteErrorKind(mkdirErr) == ErrAlreadyExists {
			mkdirErr = nil
		}
		resultMap.AddMkdirResult(dir, mkdirErr)
		if mkdirErr != nil {
			log.Warn(fmt.Sprintf("Error creating remote directory %s: %s", dir, mkdirErr))
			return fmt.Errorf("Error creating remote directory %s: %s", dir, mkdirErr)
		}
		log.Info(fmt.Sprintf("Created remote directory %s", dir))
	}

	return nil
}

// deleteDirectoryRecursive deletes a remote directory, compensating for a
// protocol that can only delete empty ones. A "not empty" response is the
// signal to list the children, delete each (recursing into
// sub-directories), and retry the plain delete.
func deleteDirectoryRecursive(client RemoteClient, dir string) error {
	rmdirErr := client.DeleteDirectory(dir)
	if rmdirErr == nil {
		return nil
	}
	if remoteErrorKind(rmdirErr) != ErrNotEmpty {
		return rmdirErr
	}

	entries, listErr := client.ListDirectory(dir)
	if listErr != nil {
		return listErr
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for _, entry := range entries {
		child := joinPath(dir, entry.Name)
		if entry.IsDir {
			if childErr := deleteDirectoryRecursive(client, child); childErr != nil {
				return childErr
			}
		} else if childErr := client.DeleteFile(child); childErr != nil {
			return childErr
		}
	}

	return client.DeleteDirectory(dir)
}

func doUploadFile(client RemoteClient, localRoot, key string, wg *sync.WaitGroup, resultMap *ResultMap) error {
	resultMap.AddUploadResult(key, nil)
	semaphore <- 1
	defer wg.Done()

	localPath := filepath.Join(localRoot, filepath.FromSlash(key))
	uploadErr := client.UploadFile(localPath, key)
	if uploadErr != nil {
		log.Warn(fmt.Sprintf("Error uploading %s: %s", key, uploadErr))
		resultMap.AddUploadResult(key, uploadErr)
	} else {
		log.Info(fmt.Sprintf("Uploaded file %s as %s", localPath, key))
	}
	<-semaphore

	return uploadErr
}
