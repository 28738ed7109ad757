package main

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// doPush runs one full reconciliation: scan the local tree, diff it
// against the last committed snapshot, apply the plan to the remote, and
// commit the new snapshot. The snapshot is only written when every
// scheduled operation succeeded, so an interrupted push just reconciles
// against the stale-but-consistent prior snapshot next time.
func doPush(client RemoteClient, store SnapshotStore, sc SyncConfig, notifier Notifier, lock *sync.Mutex) (*ResultMap, error) {
	resultMap := newResultMap()
	if !lock.TryLock() {
		log.Warn("Another push is already running. Skipping.")
		return resultMap, fmt.Errorf("Unable to acquire push lock")
	}
	defer lock.Unlock()
	log.Info(fmt.Sprintf("Push starting for %s.", sc.SourceFolder))
	pushStartTime := time.Now()

	prev, loadErr := store.Load()
	if loadErr != nil {
		log.Warn(fmt.Sprintf("loadSnapshotErr: %s", loadErr))
		return resultMap, loadErr
	}

	exclude, excludeErr := compileExclude(sc.Exclude)
	if excludeErr != nil {
		return resultMap, fmt.Errorf("Invalid exclude pattern: %s", excludeErr)
	}

	current, scanErr := concreteScanFunc(sc.SourceFolder, exclude)
	if scanErr != nil {
		log.Warn(fmt.Sprintf("scanErr: %s", scanErr))
		return resultMap, scanErr
	}

	ops := computeDiff(current, prev)
	log.Info(fmt.Sprintf(
		"Plan for %s: %d dirs to create, %d dirs to delete, %d files to upload, %d files to delete",
		sc.SourceFolder, len(ops.DirsToCreate), len(ops.DirsToDelete),
		len(ops.FilesToUpload), len(ops.FilesToDelete)))

	if applyErr := applyOperations(client, ops, sc.SourceFolder, resultMap); applyErr != nil {
		if notifier != nil {
			notifier.NotifyPushResults(sc, resultMap)
		}
		return resultMap, fmt.Errorf("Push aborted: %s", applyErr)
	}

	if saveErr := store.Save(snapshotFromState(current)); saveErr != nil {
		return resultMap, fmt.Errorf("Error committing snapshot: %s", saveErr)
	}

	duration := time.Since(pushStartTime)
	log.Info(fmt.Sprintf("Push complete for %s. Took %s", sc.SourceFolder, duration.String()))

	if notifier != nil {
		notifier.NotifyPushResults(sc, resultMap)
	}

	return resultMap, nil
}
