package api

import (
	"sync"
	"time"

	"cashflow/internal/game"
)

type Notification struct {
	Kind    game.NotificationKind `json:"kind"`
	Title   string                `json:"title"`
	Message string                `json:"message"`
	At      time.Time             `json:"at"`
}

// Feed keeps the most recent notifications for polling clients and forwards
// each one to next.
type Feed struct {
	mu    sync.Mutex
	limit int
	items []Notification
	next  game.Notifier
}

func NewFeed(limit int, next game.Notifier) *Feed {
	if limit <= 0 {
		limit = 50
	}
	return &Feed{limit: limit, next: next}
}

func (f *Feed) Notify(kind game.NotificationKind, title, message string) {
	f.mu.Lock()
	f.items = append(f.items, Notification{Kind: kind, Title: title, Message: message, At: time.Now().UTC()})
	if len(f.items) > f.limit {
		f.items = append([]Notification(nil), f.items[len(f.items)-f.limit:]...)
	}
	f.mu.Unlock()
	if f.next != nil {
		f.next.Notify(kind, title, message)
	}
}

// Recent returns the buffered notifications, newest last.
func (f *Feed) Recent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification{}, f.items...)
}
