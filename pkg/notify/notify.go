package notify

import (
	"context"
	"time"

	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/model"
)

type EventType string

const (
	FileAdded   EventType = "file.added"
	FileUpdated EventType = "file.updated"
	FileRemoved EventType = "file.removed"
)

type Event struct {
	Type EventType         `json:"event"`
	File model.ScannedFile `json:"data"`
	At   time.Time         `json:"at"`
}

func NewEvent(t EventType, file model.ScannedFile) Event {
	return Event{Type: t, File: file, At: time.Now().UTC()}
}

// Notifier receives ledger events. Implementations must return promptly and
// never block the caller.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

type NotifierFunc func(ctx context.Context, event Event)

func (f NotifierFunc) Notify(ctx context.Context, event Event) {
	f(ctx, event)
}

// Nop discards every event
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Log writes every event to the context logger at debug level
type Log struct{}

func (Log) Notify(ctx context.Context, event Event) {
	logger.FromCtx(ctx).Debugw("ledger event",
		"event", event.Type,
		"id", event.File.ID,
		"source", event.File.SourceFile,
		"status", event.File.Status)
}

// Fanout delivers each event to every notifier. A notifier that panics is
// logged and skipped.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, event Event) {
	for _, n := range f {
		Safe(ctx, n, event)
	}
}

// Safe delivers an event and recovers from a panicking notifier
func Safe(ctx context.Context, n Notifier, event Event) {
	if n == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.FromCtx(ctx).Errorw("notifier panicked", "event", event.Type, "id", event.File.ID, "panic", r)
		}
	}()
	n.Notify(ctx, event)
}
