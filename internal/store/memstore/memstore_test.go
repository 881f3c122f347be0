package memstore

import (
	"errors"
	"testing"
	"time"

	"github.com/strideapp/stride/internal/models"
	"github.com/strideapp/stride/internal/store"
)

var base = time.Date(2024, 3, 22, 10, 0, 0, 0, time.UTC)

func work(desc string, begin time.Time, status models.ActivityStatus) *models.Activity {
	return &models.Activity{
		Kind:        models.KindWork,
		Category:    "Test",
		Description: desc,
		Begin:       begin,
		Status:      status,
	}
}

func TestInsertAssignsSortableIDs(t *testing.T) {
	m := New()

	first, err := m.Insert(work("one", base, models.StatusEnded))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	second, err := m.Insert(work("two", base, models.StatusEnded))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if first == "" || second == "" {
		t.Fatal("Expected non-empty ids")
	}
	if first >= second {
		t.Errorf("Expected monotonically sortable ids, got %s >= %s", first, second)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	m := New()
	id, _ := m.Insert(work("task", base, models.StatusActive))

	a, err := m.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	a.Description = "mutated"

	again, _ := m.Get(id)
	if again.Description != "task" {
		t.Error("Get must not expose internal state")
	}
}

func TestGetNotFound(t *testing.T) {
	m := New()
	if _, err := m.Get("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePartialMerge(t *testing.T) {
	m := New()
	id, _ := m.Insert(work("task", base, models.StatusActive))

	desc := "renamed"
	if err := m.Update(id, store.Mutation{Description: &desc}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	a, _ := m.Get(id)
	if a.Description != "renamed" {
		t.Errorf("Expected description renamed, got %s", a.Description)
	}
	if a.Category != "Test" {
		t.Errorf("Unset fields must stay unchanged, category became %s", a.Category)
	}
	if a.Status != models.StatusActive {
		t.Errorf("Unset fields must stay unchanged, status became %s", a.Status)
	}

	if err := m.Update("missing", store.Mutation{Description: &desc}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFindActiveWork(t *testing.T) {
	m := New()

	a, err := m.FindActiveWork()
	if err != nil {
		t.Fatalf("FindActiveWork failed: %v", err)
	}
	if a != nil {
		t.Error("Expected nil when nothing is active")
	}

	m.Insert(work("done", base, models.StatusEnded))
	id, _ := m.Insert(work("running", base.Add(time.Hour), models.StatusActive))

	a, err = m.FindActiveWork()
	if err != nil {
		t.Fatalf("FindActiveWork failed: %v", err)
	}
	if a == nil || a.ID != id {
		t.Errorf("Expected active entry %s, got %+v", id, a)
	}
}

func TestFindOpenIntermission(t *testing.T) {
	m := New()
	parentID, _ := m.Insert(work("held", base, models.StatusHeld))
	openID, _ := m.Insert(&models.Activity{
		Kind:        models.KindIntermission,
		Description: "coffee",
		Begin:       base.Add(time.Hour),
		Status:      models.StatusActive,
		ParentID:    parentID,
	})

	got, err := m.FindOpenIntermission(parentID)
	if err != nil {
		t.Fatalf("FindOpenIntermission failed: %v", err)
	}
	if got == nil || got.ID != openID {
		t.Errorf("Expected intermission %s, got %+v", openID, got)
	}

	got, _ = m.FindOpenIntermission("other")
	if got != nil {
		t.Errorf("Expected nil for foreign parent, got %+v", got)
	}
}

func TestHeldWorkLookups(t *testing.T) {
	m := New()
	firstID, _ := m.Insert(work("first", base, models.StatusHeld))
	secondID, _ := m.Insert(work("second", base.Add(time.Hour), models.StatusHeld))
	m.Insert(work("active", base.Add(2*time.Hour), models.StatusActive))

	held, err := m.ListHeldWork()
	if err != nil {
		t.Fatalf("ListHeldWork failed: %v", err)
	}
	if len(held) != 2 || held[0].ID != firstID || held[1].ID != secondID {
		t.Errorf("Expected held entries ordered by begin, got %+v", held)
	}

	got, err := m.FindHeldWork(secondID)
	if err != nil {
		t.Fatalf("FindHeldWork failed: %v", err)
	}
	if got == nil || got.ID != secondID {
		t.Errorf("Expected held entry %s, got %+v", secondID, got)
	}

	got, _ = m.FindHeldWork("missing")
	if got != nil {
		t.Errorf("Expected nil for missing id, got %+v", got)
	}
}

func TestScanRangeHalfOpen(t *testing.T) {
	m := New()
	m.Insert(work("before", base.Add(-time.Hour), models.StatusEnded))
	inID, _ := m.Insert(work("in", base, models.StatusEnded))
	m.Insert(work("at-end", base.Add(time.Hour), models.StatusEnded))

	got, err := m.ScanRange(base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("ScanRange failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != inID {
		t.Errorf("Expected only the entry with begin in [start, end), got %+v", got)
	}
}

func TestTransactSerializesWrites(t *testing.T) {
	m := New()

	err := m.Transact(func(tx store.Store) error {
		id, err := tx.Insert(work("tx", base, models.StatusActive))
		if err != nil {
			return err
		}
		held := models.StatusHeld
		return tx.Update(id, store.Mutation{Status: &held})
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	held, _ := m.ListHeldWork()
	if len(held) != 1 {
		t.Errorf("Expected 1 held entry after transact, got %d", len(held))
	}
}
