package game

import (
	"context"
	"log/slog"
)

// Store persists opaque snapshots by key. Load returns nil, nil when the key
// has never been written.
type Store interface {
	Save(key string, value []byte) error
	Load(key string) ([]byte, error)
	Clear() error
}

type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyWarning NotificationKind = "warning"
	NotifyInfo    NotificationKind = "info"
)

type Notifier interface {
	Notify(kind NotificationKind, title, message string)
}

type Navigator interface {
	GoToStartScreen()
	GoToGameScreen()
}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(kind NotificationKind, title, message string) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	switch kind {
	case NotifyError:
		level = slog.LevelError
	case NotifyWarning:
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "notification", "kind", string(kind), "title", title, "message", message)
}

type NopNavigator struct{}

func (NopNavigator) GoToStartScreen() {}
func (NopNavigator) GoToGameScreen()  {}

type nopNotifier struct{}

func (nopNotifier) Notify(NotificationKind, string, string) {}
