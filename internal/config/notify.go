package config

import (
	"context"

	"github.com/iiasa/ixmp/internal/pubsub"
)

// ChangeKind identifies what changed in a Store.
type ChangeKind string

const (
	ChangeSet      ChangeKind = "set"
	ChangeClear    ChangeKind = "clear"
	ChangeRead     ChangeKind = "read"
	ChangeSave     ChangeKind = "save"
	ChangePlatform ChangeKind = "platform"
)

// Change describes one mutation of a Store.
type Change struct {
	Kind ChangeKind
	// Key is the key or platform name affected, if any.
	Key string
	// Path is the store's configuration file at the time of the change.
	Path string
}

const changeBufferSize = 16

// Subscribe returns a channel of changes. The channel is closed when ctx is
// cancelled. Slow subscribers miss events rather than blocking the store.
func (s *Store) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return s.broker.Subscribe(ctx)
}

func (s *Store) notifyLocked(kind ChangeKind, key string) {
	eventType := pubsub.UpdatedEvent
	switch kind {
	case ChangeClear:
		eventType = pubsub.DeletedEvent
	case ChangeSave:
		eventType = pubsub.CreatedEvent
	}
	s.broker.Publish(eventType, Change{Kind: kind, Key: key, Path: s.path})
}
