package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/jinzhu/configor"
	log "github.com/sirupsen/logrus"
)

func main() {
	configFilePath := flag.String("configfile", "", "Configuration File Path")
	flag.Parse()

	if *configFilePath == "" {
		panic("Required flag -configfile not set but required")
	}

	var appConfig AppConfig
	configErr := configor.Load(&appConfig, *configFilePath)
	if configErr != nil {
		panic(configErr)
	}
	semaphore = make(chan int, appConfig.Concurrency)

	for i := range appConfig.Sync {
		resolved, resolveErr := resolveRoot(appConfig.Sync[i].SourceFolder)
		if resolveErr != nil {
			panic(fmt.Errorf("Error resolving sync folder %s: %s\n", appConfig.Sync[i].SourceFolder, resolveErr))
		}
		appConfig.Sync[i].SourceFolder = resolved
	}

	for _, line := range appConfig.ConfigStringArray() {
		log.Info(line)
	}

	command := flag.Arg(0)
	if command == "" {
		command = "push"
	}

	switch command {
	case "status":
		if statusErr := runStatus(appConfig); statusErr != nil {
			panic(fmt.Errorf("Status error: %s\n", statusErr))
		}
	case "push":
		client, notifier := mustConnect(appConfig)
		defer client.Close()
		lock := &sync.Mutex{}
		for _, syncConfig := range appConfig.Sync {
			store := NewFileSnapshotStore(appConfig.StateDir, syncConfig.SourceFolder)
			if _, pushErr := doPush(client, store, syncConfig, notifier, lock); pushErr != nil {
				panic(fmt.Errorf("Push error: %s\n", pushErr))
			}
		}
	case "daemon":
		client, notifier := mustConnect(appConfig)
		defer client.Close()
		if daemonErr := runDaemon(appConfig, client, notifier); daemonErr != nil {
			panic(fmt.Errorf("Daemon error: %s\n", daemonErr))
		}
	default:
		panic(fmt.Errorf("Unknown command: %s\n", command))
	}
}

// The sync root is fixed, absolute and symlink-resolved for the lifetime
// of a push, and the snapshot state file is keyed off the resolved path.
func resolveRoot(root string) (string, error) {
	abs, absErr := filepath.Abs(root)
	if absErr != nil {
		return "", absErr
	}
	return filepath.EvalSymlinks(abs)
}

func mustConnect(appConfig AppConfig) (RemoteClient, Notifier) {
	client, clientErr := appConfig.ClientFromConfig()
	if clientErr != nil {
		panic(fmt.Errorf("Error connecting to remote: %s\n", clientErr))
	}

	var notifier Notifier
	if appConfig.Notify.Topic != "" {
		snsNotifier, notifierErr := NewSNSNotifier(appConfig.Notify)
		if notifierErr != nil {
			panic(fmt.Errorf("Error creating notifier: %s\n", notifierErr))
		}
		notifier = snsNotifier
	}

	return client, notifier
}

// runStatus prints the plan a push would execute without touching the
// remote or the snapshot.
func runStatus(appConfig AppConfig) error {
	for _, syncConfig := range appConfig.Sync {
		store := NewFileSnapshotStore(appConfig.StateDir, syncConfig.SourceFolder)
		prev, loadErr := store.Load()
		if loadErr != nil {
			return loadErr
		}
		exclude, excludeErr := compileExclude(syncConfig.Exclude)
		if excludeErr != nil {
			return fmt.Errorf("Invalid exclude pattern: %s", excludeErr)
		}
		current, scanErr := concreteScanFunc(syncConfig.SourceFolder, exclude)
		if scanErr != nil {
			return scanErr
		}

		ops := computeDiff(current, prev)
		fmt.Printf("%s:\n", syncConfig.SourceFolder)
		if ops.Empty() {
			fmt.Println("  in sync, nothing to push")
			continue
		}
		printOperations("create directory", ops.DirsToCreate)
		printOperations("delete directory", ops.DirsToDelete)
		printOperations("upload", ops.FilesToUpload)
		printOperations("delete", ops.FilesToDelete)
	}

	return nil
}

func printOperations(action string, paths []string) {
	for _, path := range paths {
		fmt.Printf("  %s %s\n", action, path)
	}
}
