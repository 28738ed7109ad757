package main

type Notifier interface {
	NotifyPushResults(SyncConfig, *ResultMap) error
}
