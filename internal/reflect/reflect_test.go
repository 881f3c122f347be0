package reflect

import (
	"testing"
	"time"

	"github.com/strideapp/stride/internal/models"
)

var (
	rangeStart = time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC)
	rangeEnd   = time.Date(2024, 3, 23, 0, 0, 0, 0, time.UTC)
	testNow    = time.Date(2024, 3, 22, 18, 0, 0, 0, time.UTC)
)

// fakeScanner serves a fixed activity set, filtered by begin the way a
// real store range scan would.
type fakeScanner struct {
	activities []models.Activity
	active     *models.Activity
}

func (f *fakeScanner) ScanRange(start, end time.Time) ([]models.Activity, error) {
	var out []models.Activity
	for _, a := range f.activities {
		if !a.Begin.Before(start) && a.Begin.Before(end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeScanner) FindActiveWork() (*models.Activity, error) {
	return f.active, nil
}

func ended(id, category, description string, begin time.Time, durationSec int64) models.Activity {
	end := begin.Add(time.Duration(durationSec) * time.Second)
	return models.Activity{
		ID:          id,
		Kind:        models.KindWork,
		Category:    category,
		Description: description,
		Begin:       begin,
		End:         &end,
		DurationSec: &durationSec,
		Status:      models.StatusEnded,
	}
}

func intermission(id, parentID string, begin time.Time, durationSec int64) models.Activity {
	end := begin.Add(time.Duration(durationSec) * time.Second)
	return models.Activity{
		ID:          id,
		Kind:        models.KindIntermission,
		Description: "break",
		Begin:       begin,
		End:         &end,
		DurationSec: &durationSec,
		Status:      models.StatusEnded,
		ParentID:    parentID,
	}
}

func TestGenerateGroupsAndMerges(t *testing.T) {
	day := rangeStart
	scanner := &fakeScanner{activities: []models.Activity{
		ended("a1", "Freelance::Design", "Logo sketches", day.Add(9*time.Hour), 3600),
		ended("a2", "Freelance::Design", "Logo sketches", day.Add(11*time.Hour), 1800),
		ended("a3", "Freelance::Admin", "Invoices", day.Add(13*time.Hour), 900),
		ended("a4", "Personal", "Reading", day.Add(20*time.Hour), 1200),
		intermission("b1", "a1", day.Add(9*time.Hour+30*time.Minute), 600),
	}}

	summary, err := New(scanner, "::").Generate(rangeStart, rangeEnd, testNow, Filter{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if summary.TotalDurationSec != 7500 {
		t.Errorf("Expected total 7500s, got %d", summary.TotalDurationSec)
	}
	if summary.TotalBreakSec != 600 || summary.TotalBreakCount != 1 {
		t.Errorf("Expected one 600s break, got %ds/%d", summary.TotalBreakSec, summary.TotalBreakCount)
	}
	if len(summary.Categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(summary.Categories))
	}

	freelance := summary.Categories[0]
	if freelance.Name != "Freelance" {
		t.Fatalf("Expected Freelance first, got %s", freelance.Name)
	}
	if freelance.TotalDurationSec != 6300 {
		t.Errorf("Expected Freelance total 6300s, got %d", freelance.TotalDurationSec)
	}
	if len(freelance.Subcategories) != 2 {
		t.Fatalf("Expected 2 subcategories, got %d", len(freelance.Subcategories))
	}
	if freelance.Subcategories[0].Name != "Admin" || freelance.Subcategories[1].Name != "Design" {
		t.Errorf("Expected lexicographic subcategory order, got %+v", freelance.Subcategories)
	}

	design := freelance.Subcategories[1].Entries
	if len(design) != 1 {
		t.Fatalf("Expected sessions merged into 1 entry, got %d", len(design))
	}
	if design[0].Sessions != 2 || design[0].TotalDurationSec != 5400 {
		t.Errorf("Expected 2 sessions totaling 5400s, got %+v", design[0])
	}
	if design[0].TotalBreakSec != 600 || design[0].TotalBreakCount != 1 {
		t.Errorf("Expected break attributed to its parent's entry, got %+v", design[0])
	}

	personal := summary.Categories[1]
	if personal.Name != "Personal" {
		t.Fatalf("Expected Personal second, got %s", personal.Name)
	}
	if personal.Subcategories[0].Name != "" {
		t.Errorf("Expected empty subcategory for a flat category, got %q", personal.Subcategories[0].Name)
	}
}

func TestGenerateEmptyRange(t *testing.T) {
	summary, err := New(&fakeScanner{}, "").Generate(rangeStart, rangeEnd, testNow, Filter{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !summary.Empty() {
		t.Errorf("Expected empty summary, got %+v", summary)
	}
	if summary.TotalDurationSec != 0 {
		t.Errorf("Expected zero total, got %d", summary.TotalDurationSec)
	}
}

func TestGenerateCategoryFilter(t *testing.T) {
	day := rangeStart
	scanner := &fakeScanner{activities: []models.Activity{
		ended("a1", "Freelance::Design", "Logo", day.Add(9*time.Hour), 3600),
		ended("a2", "Personal", "Reading", day.Add(20*time.Hour), 1200),
	}}
	engine := New(scanner, "::")

	summary, err := engine.Generate(rangeStart, rangeEnd, testNow, Filter{Category: "free*"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(summary.Categories) != 1 || summary.Categories[0].Name != "Freelance" {
		t.Errorf("Expected case-insensitive wildcard match on Freelance, got %+v", summary.Categories)
	}

	summary, err = engine.Generate(rangeStart, rangeEnd, testNow, Filter{Category: "free*", CaseSensitive: true})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !summary.Empty() {
		t.Errorf("Expected no case-sensitive match, got %+v", summary.Categories)
	}

	if _, err := engine.Generate(rangeStart, rangeEnd, testNow, Filter{Category: "[bad"}); err == nil {
		t.Error("Expected error for invalid filter pattern")
	}
}

func TestGenerateOpenEntryUsesLiveDuration(t *testing.T) {
	active := models.Activity{
		ID:          "a1",
		Kind:        models.KindWork,
		Category:    "Work",
		Description: "In flight",
		Begin:       testNow.Add(-45 * time.Minute),
		Status:      models.StatusActive,
	}
	scanner := &fakeScanner{activities: []models.Activity{active}, active: &active}

	summary, err := New(scanner, "::").Generate(rangeStart, rangeEnd, testNow, Filter{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if summary.TotalDurationSec != 2700 {
		t.Errorf("Expected live duration 2700s, got %d", summary.TotalDurationSec)
	}
}

func TestGenerateIncludesActiveEntryFromBeforeRange(t *testing.T) {
	// Began yesterday, still running: it is outside the scan but overlaps
	// the range, so it contributes its live duration.
	active := models.Activity{
		ID:          "a1",
		Kind:        models.KindWork,
		Category:    "Work",
		Description: "Overnight",
		Begin:       rangeStart.Add(-2 * time.Hour),
		Status:      models.StatusActive,
	}
	scanner := &fakeScanner{activities: []models.Activity{active}, active: &active}

	summary, err := New(scanner, "::").Generate(rangeStart, rangeEnd, testNow, Filter{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(summary.Categories) != 1 {
		t.Fatalf("Expected the overlapping active entry to be included, got %+v", summary.Categories)
	}
	want := int64((testNow.Sub(active.Begin)) / time.Second)
	if summary.TotalDurationSec != want {
		t.Errorf("Expected %ds, got %d", want, summary.TotalDurationSec)
	}
}

func TestGenerateDeterministicOrder(t *testing.T) {
	day := rangeStart
	scanner := &fakeScanner{activities: []models.Activity{
		ended("a1", "Zeta", "z", day.Add(time.Hour), 60),
		ended("a2", "Alpha", "a", day.Add(2*time.Hour), 60),
		ended("a3", "Mid::B", "m2", day.Add(3*time.Hour), 60),
		ended("a4", "Mid::A", "m1", day.Add(4*time.Hour), 60),
	}}
	engine := New(scanner, "::")

	first, err := engine.Generate(rangeStart, rangeEnd, testNow, Filter{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := engine.Generate(rangeStart, rangeEnd, testNow, Filter{})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(again.Categories) != len(first.Categories) {
			t.Fatal("Expected stable category count")
		}
		for j := range again.Categories {
			if again.Categories[j].Name != first.Categories[j].Name {
				t.Fatalf("Expected deterministic order, got %s vs %s",
					again.Categories[j].Name, first.Categories[j].Name)
			}
		}
	}
	names := make([]string, len(first.Categories))
	for i, c := range first.Categories {
		names[i] = c.Name
	}
	if names[0] != "Alpha" || names[1] != "Mid" || names[2] != "Zeta" {
		t.Errorf("Expected lexicographic categories, got %v", names)
	}
}
