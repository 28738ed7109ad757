package main

import (
	"fmt"
)

type AppConfig struct {
	Provider    string `required:"true"`
	StateDir    string `default:".synk"`
	Concurrency int    `default:"1"`
	Sync        []SyncConfig
	SFTP        SFTPConfig
	S3          S3Config
	GCS         GCSConfig
	Notify      NotifyConfig
}

type SyncConfig struct {
	SourceFolder string `required:"true"`
	Interval     int    `default:"5"`
	Exclude      []string
}

type SFTPConfig struct {
	Host     string
	Port     int `default:"22"`
	Username string
	Password string
	KeyFile  string
	Root     string
}

type S3Config struct {
	Bucket  string
	Prefix  string
	Region  string
	Profile string
}

type GCSConfig struct {
	Bucket string
	Prefix string
}

type NotifyConfig struct {
	Topic   string
	Region  string
	Profile string
}

func (c AppConfig) ClientFromConfig() (RemoteClient, error) {
	var remoteClient RemoteClient

	switch c.Provider {
	case "sftp":
		return NewSFTPRemote(c.SFTP)
	case "s3":
		return NewS3Remote(c.S3)
	case "gcs":
		return NewGCSRemote(c.GCS)
	default:
		return remoteClient, fmt.Errorf("Unknown remote provider: %s", c.Provider)
	}
}

func (c AppConfig) ConfigStringArray() []string {
	configStrArr := make([]string, 0)
	configStrArr = append(configStrArr, fmt.Sprintf("  - Provider: %s", c.Provider))
	configStrArr = append(configStrArr, fmt.Sprintf("  - StateDir: %s", c.StateDir))
	configStrArr = append(configStrArr, fmt.Sprintf("  - Concurrent Uploads: %d", c.Concurrency))

	if c.Notify.Topic != "" {
		configStrArr = append(configStrArr, fmt.Sprintf("  - SNSTopic: %s", c.Notify.Topic))
	}

	configStrArr = append(configStrArr, "Folders To Sync:")
	for _, syncConfig := range c.Sync {
		configStrArr = append(configStrArr, fmt.Sprintf("%+v", syncConfig))
	}

	return configStrArr
}
