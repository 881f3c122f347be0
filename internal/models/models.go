// Package models defines the core domain types for Stride.
package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ActivityKind distinguishes trackable work from pauses.
type ActivityKind string

const (
	// KindWork is a timed unit of work.
	KindWork ActivityKind = "work"
	// KindIntermission is a pause owned by exactly one work entry.
	KindIntermission ActivityKind = "intermission"
)

// ActivityStatus represents the lifecycle state of an activity.
type ActivityStatus string

const (
	StatusActive ActivityStatus = "active"
	StatusHeld   ActivityStatus = "held"
	StatusEnded  ActivityStatus = "ended"
)

// Activity is a timed unit of work or a pause.
//
// End and DurationSec are set together, exactly when Status is ended.
// For an active entry the live duration (now - Begin) is always computed
// on demand and never stored.
type Activity struct {
	ID          string         `json:"id"`
	Kind        ActivityKind   `json:"kind"`
	Category    string         `json:"category,omitempty"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags,omitempty"`
	Begin       time.Time      `json:"begin"`
	End         *time.Time     `json:"end,omitempty"`
	DurationSec *int64         `json:"duration_sec,omitempty"`
	Status      ActivityStatus `json:"status"`
	ParentID    string         `json:"parent_id,omitempty"` // intermissions only, id of the held work entry
}

// NewID returns a new time-ordered activity id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source does; fall back to v4.
		return uuid.New().String()
	}
	return id.String()
}

// IsWork reports whether the activity is a work entry.
func (a *Activity) IsWork() bool { return a.Kind == KindWork }

// IsIntermission reports whether the activity is a pause.
func (a *Activity) IsIntermission() bool { return a.Kind == KindIntermission }

// IsOpen reports whether the activity has not ended yet.
func (a *Activity) IsOpen() bool { return a.Status != StatusEnded }

// LiveDuration returns now - Begin for an entry that has not ended.
// For an ended entry it returns the stored duration.
func (a *Activity) LiveDuration(now time.Time) time.Duration {
	if a.DurationSec != nil {
		return time.Duration(*a.DurationSec) * time.Second
	}
	return now.Sub(a.Begin)
}

// NormalizeTags deduplicates and sorts tags in place. Insertion order is
// irrelevant per the data model, so a sorted set keeps comparisons stable.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
