package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSNSNotifiesOnlyOnErrors(t *testing.T) {
	mockNotifier := &SNSNotifier{
		Client: NewMockSNSClient(),
		Topic:  "mock-topic",
	}
	mockResults := newResultMap()
	mockResults.AddUploadResult("clean-file", nil)
	mockResults.AddDeleteResult("clean-delete", nil)
	mockSyncConfig := SyncConfig{SourceFolder: "/folder1"}

	notifyErr := mockNotifier.NotifyPushResults(mockSyncConfig, mockResults)

	assert.Nil(t, notifyErr)
	mockClient := mockNotifier.Client.(*MockSNSClient)
	assert.Len(t, mockClient.PublishRequests, 0)
}

func TestSNSPublishIncludesFailedOperations(t *testing.T) {
	mockNotifier := &SNSNotifier{
		Client: NewMockSNSClient(),
		Topic:  "mock-topic",
	}
	mockResults := newResultMap()
	mockResults.AddUploadResult("broken-file", fmt.Errorf("permission denied"))
	mockResults.AddUploadResult("clean-file", nil)
	mockSyncConfig := SyncConfig{SourceFolder: "/folder1"}
	expectedSubject := "Push Errors: /folder1"

	notifyErr := mockNotifier.NotifyPushResults(mockSyncConfig, mockResults)

	assert.Nil(t, notifyErr)
	mockClient := mockNotifier.Client.(*MockSNSClient)
	assert.Len(t, mockClient.PublishRequests, 1)
	assert.Equal(t, expectedSubject, *mockClient.PublishRequests[0].Subject)
	assert.Contains(t, *mockClient.PublishRequests[0].Message, "Action: Upload")
	assert.Contains(t, *mockClient.PublishRequests[0].Message, "Key: broken-file")
	assert.NotContains(t, *mockClient.PublishRequests[0].Message, "clean-file")
}
