package models

import (
	"testing"
	"time"
)

func TestNewIDSortable(t *testing.T) {
	first := NewID()
	second := NewID()
	if first == "" || second == "" {
		t.Fatal("Expected non-empty ids")
	}
	if first >= second {
		t.Errorf("Expected time-ordered ids, got %s >= %s", first, second)
	}
}

func TestLiveDuration(t *testing.T) {
	now := time.Date(2024, 3, 22, 12, 0, 0, 0, time.UTC)

	open := Activity{Begin: now.Add(-90 * time.Minute), Status: StatusActive}
	if got := open.LiveDuration(now); got != 90*time.Minute {
		t.Errorf("Expected 1h30m live duration, got %v", got)
	}

	stored := int64(600)
	ended := Activity{Begin: now.Add(-time.Hour), DurationSec: &stored, Status: StatusEnded}
	if got := ended.LiveDuration(now); got != 10*time.Minute {
		t.Errorf("Expected stored duration to win, got %v", got)
	}
}

func TestIsOpen(t *testing.T) {
	if !(&Activity{Status: StatusActive}).IsOpen() {
		t.Error("Active entry must be open")
	}
	if !(&Activity{Status: StatusHeld}).IsOpen() {
		t.Error("Held entry must be open")
	}
	if (&Activity{Status: StatusEnded}).IsOpen() {
		t.Error("Ended entry must not be open")
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"beta", "alpha", "beta", ""})
	if len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Errorf("Expected [alpha beta], got %v", got)
	}
	if NormalizeTags(nil) != nil {
		t.Error("Expected nil for no tags")
	}
	if NormalizeTags([]string{""}) != nil {
		t.Error("Expected nil when only empty tags are given")
	}
}
