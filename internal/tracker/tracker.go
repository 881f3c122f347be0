// Package tracker implements the activity lifecycle state machine.
//
// Every mutating operation validates its time arguments, takes the
// exclusive lock for its whole read-validate-write sequence and runs all
// store writes inside one Transact, so a concurrent reader never observes
// a state mid-invariant-violation.
package tracker

import (
	"fmt"
	"time"

	"github.com/strideapp/stride/internal/models"
	"github.com/strideapp/stride/internal/store"
	"github.com/strideapp/stride/internal/timeutil"

	"sync"
)

// Tracker is the lifecycle engine. It is the sole writer of the store.
type Tracker struct {
	mu    sync.RWMutex
	store store.Store
	clock timeutil.Clock
}

// New creates a lifecycle engine over the given store.
func New(s store.Store, clock timeutil.Clock) *Tracker {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	return &Tracker{store: s, clock: clock}
}

// BeginOptions describe a new work entry. A zero At means "now".
type BeginOptions struct {
	Category    string
	Description string
	Tags        []string
	At          time.Time
}

// Begin starts a new work entry. It fails with ErrAlreadyActive when a
// work entry is already active, performing no store mutation.
func (t *Tracker) Begin(opts BeginOptions) (*models.Activity, error) {
	if opts.Description == "" {
		return nil, fmt.Errorf("%w: description must not be empty", ErrValidation)
	}
	if opts.Category == "" {
		return nil, fmt.Errorf("%w: category must not be empty", ErrValidation)
	}

	now := t.clock.Now()
	at := orNow(opts.At, now)
	if err := timeutil.AssertNotFuture(at, now); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var created *models.Activity
	err := t.store.Transact(func(tx store.Store) error {
		active, err := tx.FindActiveWork()
		if err != nil {
			return fmt.Errorf("find active work: %w", err)
		}
		if active != nil {
			return fmt.Errorf("%w: %q", ErrAlreadyActive, active.Description)
		}

		a := &models.Activity{
			Kind:        models.KindWork,
			Category:    opts.Category,
			Description: opts.Description,
			Tags:        models.NormalizeTags(opts.Tags),
			Begin:       at,
			Status:      models.StatusActive,
		}
		id, err := tx.Insert(a)
		if err != nil {
			return fmt.Errorf("insert work entry: %w", err)
		}
		a.ID = id
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// EndOptions describe how to end the current activity. A zero At means
// "now".
type EndOptions struct {
	At time.Time
}

// End finishes the most recent active-or-held work entry. Ending a held
// entry first closes its open intermission at the same instant; that
// cascade is automatic, not an error, unless At precedes the
// intermission's begin.
func (t *Tracker) End(opts EndOptions) (*models.Activity, error) {
	now := t.clock.Now()
	at := orNow(opts.At, now)
	if err := timeutil.AssertNotFuture(at, now); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var ended *models.Activity
	err := t.store.Transact(func(tx store.Store) error {
		target, err := tx.FindActiveWork()
		if err != nil {
			return fmt.Errorf("find active work: %w", err)
		}
		if target == nil {
			held, err := tx.ListHeldWork()
			if err != nil {
				return fmt.Errorf("list held work: %w", err)
			}
			if len(held) == 0 {
				return ErrNoActiveActivity
			}
			// Most recently begun held entry.
			target = &held[len(held)-1]
		}

		if target.Status == models.StatusHeld {
			if err := t.closeOpenIntermission(tx, target.ID, at); err != nil {
				return err
			}
		}

		if err := timeutil.AssertOrdered(target.Begin, at); err != nil {
			return err
		}
		if err := closeActivity(tx, target, at); err != nil {
			return err
		}
		ended = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ended, nil
}

// HoldOptions describe a pause of the current activity. An empty Reason
// falls back to the activity's own description. NewIfExists closes an
// existing open intermission and opens a fresh one with the new reason
// instead of failing with ErrAlreadyHeld.
type HoldOptions struct {
	Reason      string
	At          time.Time
	NewIfExists bool
}

// Hold pauses the currently active work entry by opening an intermission.
func (t *Tracker) Hold(opts HoldOptions) (*models.Activity, error) {
	now := t.clock.Now()
	at := orNow(opts.At, now)
	if err := timeutil.AssertNotFuture(at, now); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var intermission *models.Activity
	err := t.store.Transact(func(tx store.Store) error {
		target, err := tx.FindActiveWork()
		if err != nil {
			return fmt.Errorf("find active work: %w", err)
		}
		if target == nil {
			held, err := tx.ListHeldWork()
			if err != nil {
				return fmt.Errorf("list held work: %w", err)
			}
			if len(held) == 0 {
				return ErrNoActiveActivity
			}
			if !opts.NewIfExists {
				return fmt.Errorf("%w: %q", ErrAlreadyHeld, held[len(held)-1].Description)
			}
			// Track the purpose of a new interruption: close the open
			// intermission and start another one under the same parent.
			target = &held[len(held)-1]
			if err := t.closeOpenIntermission(tx, target.ID, at); err != nil {
				return err
			}
			intermission, err = t.openIntermission(tx, target, opts.Reason, at)
			return err
		}

		if err := timeutil.AssertOrdered(target.Begin, at); err != nil {
			return err
		}
		intermission, err = t.openIntermission(tx, target, opts.Reason, at)
		if err != nil {
			return err
		}
		held := models.StatusHeld
		if err := tx.Update(target.ID, store.Mutation{Status: &held}); err != nil {
			return fmt.Errorf("hold work entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return intermission, nil
}

// ResumeOptions select the held entry to reactivate. An empty ID picks
// the sole held entry; with several held entries an explicit id is
// required. A zero At means "now".
type ResumeOptions struct {
	ID string
	At time.Time
}

// Resume closes the open intermission of a held work entry and makes the
// entry active again. When several entries are held and no id is given it
// fails with ErrAmbiguousTarget rather than guessing.
func (t *Tracker) Resume(opts ResumeOptions) (*models.Activity, error) {
	now := t.clock.Now()
	at := orNow(opts.At, now)
	if err := timeutil.AssertNotFuture(at, now); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var resumed *models.Activity
	err := t.store.Transact(func(tx store.Store) error {
		var target *models.Activity
		if opts.ID != "" {
			var err error
			target, err = tx.FindHeldWork(opts.ID)
			if err != nil {
				return fmt.Errorf("find held work: %w", err)
			}
			if target == nil {
				if _, err := tx.Get(opts.ID); err != nil {
					return err
				}
				return fmt.Errorf("%w: %s", ErrNotHeld, opts.ID)
			}
		} else {
			held, err := tx.ListHeldWork()
			if err != nil {
				return fmt.Errorf("list held work: %w", err)
			}
			switch len(held) {
			case 0:
				return ErrNotHeld
			case 1:
				target = &held[0]
			default:
				return ErrAmbiguousTarget
			}
		}

		intermission, err := tx.FindOpenIntermission(target.ID)
		if err != nil {
			return fmt.Errorf("find open intermission: %w", err)
		}
		if intermission == nil {
			return fmt.Errorf("held entry %s has no open intermission", target.ID)
		}
		if err := timeutil.AssertOrdered(intermission.Begin, at); err != nil {
			return err
		}
		if err := closeActivity(tx, intermission, at); err != nil {
			return err
		}

		active := models.StatusActive
		if err := tx.Update(target.ID, store.Mutation{Status: &active}); err != nil {
			return fmt.Errorf("reactivate work entry: %w", err)
		}
		target.Status = active
		resumed = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resumed, nil
}

// AdjustOptions describe a partial update of a non-ended entry. Nil
// fields are left unchanged. An empty ID targets the currently active
// work entry. Tags extend the existing set unless OverrideTags is set.
type AdjustOptions struct {
	ID           string
	Category     *string
	Description  *string
	Begin        *time.Time
	Tags         *[]string
	OverrideTags bool
}

// Adjust applies the supplied field changes to a non-ended entry.
func (t *Tracker) Adjust(opts AdjustOptions) (*models.Activity, error) {
	now := t.clock.Now()
	if opts.Begin != nil {
		if err := timeutil.AssertNotFuture(*opts.Begin, now); err != nil {
			return nil, err
		}
	}
	if opts.Category != nil && *opts.Category == "" {
		return nil, fmt.Errorf("%w: category must not be empty", ErrValidation)
	}
	if opts.Description != nil && *opts.Description == "" {
		return nil, fmt.Errorf("%w: description must not be empty", ErrValidation)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var adjusted *models.Activity
	err := t.store.Transact(func(tx store.Store) error {
		var target *models.Activity
		var err error
		if opts.ID != "" {
			target, err = tx.Get(opts.ID)
			if err != nil {
				return err
			}
		} else {
			target, err = tx.FindActiveWork()
			if err != nil {
				return fmt.Errorf("find active work: %w", err)
			}
			if target == nil {
				return ErrNoActiveActivity
			}
		}
		if target.Status == models.StatusEnded {
			return fmt.Errorf("%w: %s", ErrCannotAdjustEnded, target.ID)
		}

		if opts.Begin != nil {
			intermission, err := tx.FindOpenIntermission(target.ID)
			if err != nil {
				return fmt.Errorf("find open intermission: %w", err)
			}
			if intermission != nil {
				if err := timeutil.AssertOrdered(*opts.Begin, intermission.Begin); err != nil {
					return err
				}
			}
		}

		mut := store.Mutation{
			Category:    opts.Category,
			Description: opts.Description,
			Begin:       opts.Begin,
		}
		if opts.Tags != nil {
			tags := *opts.Tags
			if !opts.OverrideTags {
				tags = append(tags, target.Tags...)
			}
			normalized := models.NormalizeTags(tags)
			mut.Tags = &normalized
		}
		if err := tx.Update(target.ID, mut); err != nil {
			return fmt.Errorf("adjust activity: %w", err)
		}

		adjusted, err = tx.Get(target.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}

// Status is the currently active work entry with its live duration.
type Status struct {
	Activity     models.Activity
	LiveDuration time.Duration
}

// Now returns the active work entry with its live duration, or nil when
// nothing is active. It takes the shared read lock only.
func (t *Tracker) Now() (*Status, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	active, err := t.store.FindActiveWork()
	if err != nil {
		return nil, fmt.Errorf("find active work: %w", err)
	}
	if active == nil {
		return nil, nil
	}
	return &Status{
		Activity:     *active,
		LiveDuration: active.LiveDuration(t.clock.Now()),
	}, nil
}

// ListHeld returns all held work entries so a caller can pick an explicit
// resume target.
func (t *Tracker) ListHeld() ([]models.Activity, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store.ListHeldWork()
}

// ScanRange exposes a read-locked range scan for the review engine.
func (t *Tracker) ScanRange(start, end time.Time) ([]models.Activity, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store.ScanRange(start, end)
}

// FindActiveWork exposes a read-locked active-entry lookup for the review
// engine.
func (t *Tracker) FindActiveWork() (*models.Activity, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store.FindActiveWork()
}

// closeOpenIntermission ends the open intermission of a held entry at the
// given instant, the cascading half of ending or re-holding a held entry.
func (t *Tracker) closeOpenIntermission(tx store.Store, parentID string, at time.Time) error {
	intermission, err := tx.FindOpenIntermission(parentID)
	if err != nil {
		return fmt.Errorf("find open intermission: %w", err)
	}
	if intermission == nil {
		// Invariant 3: a held entry always owns an open intermission.
		return fmt.Errorf("held entry %s has no open intermission", parentID)
	}
	if err := timeutil.AssertOrdered(intermission.Begin, at); err != nil {
		return err
	}
	return closeActivity(tx, intermission, at)
}

// openIntermission creates an active intermission under target. The
// reason falls back to the parent's description.
func (t *Tracker) openIntermission(tx store.Store, target *models.Activity, reason string, at time.Time) (*models.Activity, error) {
	if reason == "" {
		reason = target.Description
	}
	a := &models.Activity{
		Kind:        models.KindIntermission,
		Description: reason,
		Begin:       at,
		Status:      models.StatusActive,
		ParentID:    target.ID,
	}
	id, err := tx.Insert(a)
	if err != nil {
		return nil, fmt.Errorf("insert intermission: %w", err)
	}
	a.ID = id
	return a, nil
}

// closeActivity sets end, duration and status on a and mirrors the change
// into the passed struct.
func closeActivity(tx store.Store, a *models.Activity, at time.Time) error {
	durationSec := int64(at.Sub(a.Begin) / time.Second)
	ended := models.StatusEnded
	err := tx.Update(a.ID, store.Mutation{
		End:         &at,
		DurationSec: &durationSec,
		Status:      &ended,
	})
	if err != nil {
		return fmt.Errorf("end activity: %w", err)
	}
	a.End = &at
	a.DurationSec = &durationSec
	a.Status = ended
	return nil
}

func orNow(at, now time.Time) time.Time {
	if at.IsZero() {
		return now
	}
	return at
}
