package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

func NewSNSNotifier(cfg NotifyConfig) (Notifier, error) {
	var notifier Notifier

	awsCfg, cfgErr := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithSharedConfigProfile(cfg.Profile),
		awsconfig.WithRegion(cfg.Region))

	if cfgErr != nil {
		return notifier, cfgErr
	}
	snsClient := &SNSClient{sns.NewFromConfig(awsCfg)}
	notifier = &SNSNotifier{Client: snsClient, Topic: cfg.Topic}

	return notifier, nil

}

type SNSClientIface interface {
	PublishMessage(msg *sns.PublishInput) error
}

type SNSClient struct {
	Client *sns.Client
}

func (s *SNSClient) PublishMessage(msg *sns.PublishInput) error {
	_, publishErr := s.Client.Publish(context.TODO(), msg)
	return publishErr
}

type SNSNotifier struct {
	Client SNSClientIface
	Topic  string
}

type NotificationContext struct {
	Action string
	Key    string
	Error  error
}

func (s *SNSNotifier) NotifyPushResults(syncConfig SyncConfig, resultMap *ResultMap) error {
	errors := make([]NotificationContext, 0)

	collect := func(action string, results map[string]error) {
		for key, err := range results {
			if err != nil {
				errors = append(errors, NotificationContext{
					Action: action,
					Key:    key,
					Error:  err,
				})
			}
		}
	}
	collect("Upload", resultMap.Upload)
	collect("Delete", resultMap.Delete)
	collect("Mkdir", resultMap.Mkdir)
	collect("Rmdir", resultMap.Rmdir)

	// if no errors we dont need to send any notification
	if len(errors) == 0 {
		return nil
	}

	// TODO: this has a maximum message size of 256KB, need to account for that
	notificationBody := ""
	for _, ctx := range errors {
		notificationBody += fmt.Sprintf(
			"Action: %s\nKey: %s\nError: %s\n\n\n ",
			ctx.Action,
			ctx.Key,
			ctx.Error,
		)
	}

	snsPublishReq := &sns.PublishInput{
		Message:  aws.String(notificationBody),
		TopicArn: aws.String(s.Topic),
		Subject:  aws.String(fmt.Sprintf("Push Errors: %s", syncConfig.SourceFolder)),
	}
	publishErr := s.Client.PublishMessage(snsPublishReq)

	return publishErr

}
