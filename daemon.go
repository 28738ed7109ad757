package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"
)

// runDaemon schedules a recurring push per sync folder. A single lock is
// shared across all jobs; only one push runs at a time against the remote
// session, overlapping triggers are skipped by doPush's TryLock.
func runDaemon(appConfig AppConfig, client RemoteClient, notifier Notifier) error {
	scheduler := gocron.NewScheduler(time.UTC)
	lock := &sync.Mutex{}

	for _, syncConfig := range appConfig.Sync {
		syncConfig := syncConfig
		store := NewFileSnapshotStore(appConfig.StateDir, syncConfig.SourceFolder)
		_, jobErr := scheduler.Every(syncConfig.Interval).Minutes().Do(func() {
			if _, pushErr := doPush(client, store, syncConfig, notifier, lock); pushErr != nil {
				log.Error(fmt.Sprintf("Scheduled push failed for %s: %s", syncConfig.SourceFolder, pushErr))
			}
		})
		if jobErr != nil {
			return fmt.Errorf("Error scheduling push for %s: %s", syncConfig.SourceFolder, jobErr)
		}
	}

	log.Info(fmt.Sprintf("Daemon started with %d sync folder(s)", len(appConfig.Sync)))
	scheduler.StartBlocking()
	return nil
}
