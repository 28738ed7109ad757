package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAncestorDirectoriesCreatedBeforeUpload(t *testing.T) {
	mockClient := NewMockRemoteClient(nil, nil)
	ops := &OperationSet{FilesToUpload: []string{"a/b/c.txt"}}

	applyErr := applyOperations(mockClient, ops, "/folder1", newResultMap())

	assert.Nil(t, applyErr)
	assert.Equal(t, []string{"a", "a/b"}, mockClient.MkdirRequests)
	assert.Len(t, mockClient.UploadRequests, 1)
	assert.Equal(t, "a/b/c.txt", mockClient.UploadRequests[0].RemotePath)
	assert.True(t, mockClient.HasFile("a/b/c.txt"))
}

func TestMkdirOnExistingDirectoryIsNoOp(t *testing.T) {
	mockClient := NewMockRemoteClient(nil, []string{"a"})
	resultMap := newResultMap()
	ops := &OperationSet{
		DirsToCreate:  []string{"a/b"},
		FilesToUpload: []string{"a/c.txt"},
	}

	applyErr := applyOperations(mockClient, ops, "/folder1", resultMap)

	assert.Nil(t, applyErr)
	assert.Nil(t, resultMap.Mkdir["a"])
	assert.True(t, mockClient.HasDirectory("a/b"))
}

func TestRecursiveDeleteFallback(t *testing.T) {
	mockClient := NewMockRemoteClient(
		[]string{"d/e.txt", "d/f.txt", "d/sub/g.txt"},
		[]string{"d", "d/sub"},
	)
	ops := &OperationSet{DirsToDelete: []string{"d"}}

	applyErr := applyOperations(mockClient, ops, "/folder1", newResultMap())

	assert.Nil(t, applyErr)
	assert.False(t, mockClient.HasDirectory("d"))
	assert.False(t, mockClient.HasDirectory("d/sub"))
	assert.False(t, mockClient.HasFile("d/e.txt"))
	assert.False(t, mockClient.HasFile("d/sub/g.txt"))
	// first attempt reports not-empty, then the children are listed,
	// deleted, and the plain delete is retried
	assert.Contains(t, mockClient.ListRequests, "d")
	assert.Contains(t, mockClient.ListRequests, "d/sub")
	assert.GreaterOrEqual(t, countOf(mockClient.RmdirRequests, "d"), 2)
	assert.ElementsMatch(t, []string{"d/e.txt", "d/f.txt", "d/sub/g.txt"}, mockClient.DeleteRequests)
}

func TestDeleteDirectoryOfEmptyDirectorySucceedsDirectly(t *testing.T) {
	mockClient := NewMockRemoteClient(nil, []string{"d"})
	ops := &OperationSet{DirsToDelete: []string{"d"}}

	applyErr := applyOperations(mockClient, ops, "/folder1", newResultMap())

	assert.Nil(t, applyErr)
	assert.Empty(t, mockClient.ListRequests)
	assert.Equal(t, []string{"d"}, mockClient.RmdirRequests)
}

func TestPushStopsAtFirstDeleteError(t *testing.T) {
	mockClient := NewMockRemoteClient([]string{"x.txt"}, []string{"d"})
	mockClient.FailOn["rmdir d"] = &RemoteError{
		Kind: ErrPermissionDenied,
		Path: "d",
		Err:  fmt.Errorf("permission denied"),
	}
	resultMap := newResultMap()
	ops := &OperationSet{
		DirsToDelete:  []string{"d"},
		FilesToDelete: []string{"x.txt"},
		FilesToUpload: []string{"y.txt"},
	}

	applyErr := applyOperations(mockClient, ops, "/folder1", resultMap)

	assert.NotNil(t, applyErr)
	assert.NotNil(t, resultMap.Rmdir["d"])
	// nothing after the failing operation was attempted
	assert.Empty(t, mockClient.DeleteRequests)
	assert.Empty(t, mockClient.UploadRequests)
	assert.NotContains(t, resultMap.Delete, "x.txt")
}

func TestUploadFailureFailsThePush(t *testing.T) {
	mockClient := NewMockRemoteClient(nil, nil)
	mockClient.FailOn["upload b.txt"] = &RemoteError{
		Kind: ErrPermissionDenied,
		Path: "b.txt",
		Err:  fmt.Errorf("permission denied"),
	}
	resultMap := newResultMap()
	ops := &OperationSet{FilesToUpload: []string{"a.txt", "b.txt"}}

	applyErr := applyOperations(mockClient, ops, "/folder1", resultMap)

	assert.NotNil(t, applyErr)
	assert.NotNil(t, resultMap.Upload["b.txt"])
	assert.Nil(t, resultMap.Upload["a.txt"])
}

func TestDeletePhaseRunsBeforeCreatePhase(t *testing.T) {
	mockClient := NewMockRemoteClient([]string{"thing"}, nil)
	ops := &OperationSet{
		FilesToDelete: []string{"thing"},
		FilesToUpload: []string{"thing/inner.txt"},
	}

	applyErr := applyOperations(mockClient, ops, "/folder1", newResultMap())

	assert.Nil(t, applyErr)
	assert.False(t, mockClient.HasFile("thing"))
	assert.True(t, mockClient.HasDirectory("thing"))
	assert.True(t, mockClient.HasFile("thing/inner.txt"))
}

func countOf(requests []string, key string) int {
	count := 0
	for _, request := range requests {
		if request == key {
			count++
		}
	}
	return count
}
