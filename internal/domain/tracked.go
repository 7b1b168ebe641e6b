package domain

import (
	"slices"
	"time"
)

// Tracked is the identity, optimistic-concurrency version, timestamps and
// pending event buffer shared by every aggregate. Aggregates embed it by value,
// so each snapshot owns its own copy.
type Tracked[ID ~string] struct {
	id        ID
	version   int64
	createdAt time.Time
	updatedAt time.Time
	events    []Event
}

func newTracked[ID ~string](id ID, now time.Time) Tracked[ID] {
	return Tracked[ID]{id: id, version: 1, createdAt: now, updatedAt: now}
}

func (t Tracked[ID]) ID() ID { return t.id }

// Version increases by one on every successful mutation.
func (t Tracked[ID]) Version() int64 { return t.version }

func (t Tracked[ID]) CreatedAt() time.Time { return t.createdAt }

func (t Tracked[ID]) UpdatedAt() time.Time { return t.updatedAt }

// PendingEvents returns the events recorded since the buffer was last cleared,
// oldest first.
func (t Tracked[ID]) PendingEvents() []Event {
	return slices.Clone(t.events)
}

func (t Tracked[ID]) HasPendingEvents() bool { return len(t.events) > 0 }

func (t *Tracked[ID]) markModified(now time.Time) {
	t.version++
	t.updatedAt = now
}

// record appends e without sharing the backing array with older snapshots.
func (t *Tracked[ID]) record(e Event) {
	t.events = append(slices.Clip(t.events), e)
}

func (t *Tracked[ID]) clearEvents() {
	t.events = nil
}

func (t *Tracked[ID]) newEvent(newID func() string, now time.Time, payload EventPayload) Event {
	return Event{
		ID:               newID(),
		Kind:             payload.Kind(),
		AggregateID:      string(t.id),
		AggregateVersion: t.version,
		OccurredAt:       now,
		Payload:          payload,
	}
}

// emit records one event per payload, all stamped with the current version.
func (t *Tracked[ID]) emit(newID func() string, now time.Time, payloads ...EventPayload) []Event {
	emitted := make([]Event, 0, len(payloads))
	for _, p := range payloads {
		e := t.newEvent(newID, now, p)
		t.record(e)
		emitted = append(emitted, e)
	}
	return emitted
}
