// Package reflect aggregates tracked activities over a resolved time range
// into a grouped summary for rendering.
package reflect

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/strideapp/stride/internal/models"
)

// Scanner is the slice of the store contract the review engine reads
// through. The lifecycle engine satisfies it with read-locked lookups.
type Scanner interface {
	ScanRange(start, end time.Time) ([]models.Activity, error)
	FindActiveWork() (*models.Activity, error)
}

// Filter restricts which work entries enter a summary.
type Filter struct {
	// Category is a glob-style pattern ("*" and "?" wildcards) matched
	// against the full category string. Empty matches everything.
	Category string
	// CaseSensitive disables the default case-insensitive matching.
	CaseSensitive bool
}

// EntrySummary is the leaf of the summary tree: all sessions sharing one
// description, merged.
type EntrySummary struct {
	Description      string `json:"description"`
	Sessions         int    `json:"sessions"`
	TotalDurationSec int64  `json:"total_duration_sec"`
	TotalBreakSec    int64  `json:"total_break_duration_sec"`
	TotalBreakCount  int    `json:"total_break_count"`
}

// SubcategoryGroup groups entries below one sub-category.
type SubcategoryGroup struct {
	Name    string         `json:"name"`
	Entries []EntrySummary `json:"entries"`
}

// CategoryGroup groups sub-categories below one top-level category.
type CategoryGroup struct {
	Name             string             `json:"name"`
	TotalDurationSec int64              `json:"total_duration_sec"`
	TotalBreakSec    int64              `json:"total_break_duration_sec"`
	TotalBreakCount  int                `json:"total_break_count"`
	Subcategories    []SubcategoryGroup `json:"subcategories"`
}

// Summary is the aggregated review over one time range. Categories,
// sub-categories and entries are ordered lexicographically, so the output
// is deterministic for a fixed input set.
type Summary struct {
	Start            time.Time       `json:"start"`
	End              time.Time       `json:"end"`
	TotalDurationSec int64           `json:"total_duration_sec"`
	TotalBreakSec    int64           `json:"total_break_duration_sec"`
	TotalBreakCount  int             `json:"total_break_count"`
	Categories       []CategoryGroup `json:"categories"`
}

// Empty reports whether the summary contains no entries.
func (s *Summary) Empty() bool { return len(s.Categories) == 0 }

// Engine computes review summaries.
type Engine struct {
	scanner   Scanner
	separator string
}

// New creates a review engine. separator splits categories into
// sub-categories; empty defaults to "::".
func New(scanner Scanner, separator string) *Engine {
	if separator == "" {
		separator = "::"
	}
	return &Engine{scanner: scanner, separator: separator}
}

// leafKey identifies one leaf group in the summary tree.
type leafKey struct {
	category    string
	subcategory string
	description string
}

type leafAgg struct {
	sessions   int
	duration   int64
	breakSec   int64
	breakCount int
}

// Generate scans [start, end), applies the filter and aggregates. A
// currently open entry contributes its live duration computed at now.
func (e *Engine) Generate(start, end, now time.Time, filter Filter) (*Summary, error) {
	match, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}

	activities, err := e.scanner.ScanRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("scan range: %w", err)
	}

	// A currently active entry that overlaps the range contributes its
	// live duration even when it began before the range opened.
	active, err := e.scanner.FindActiveWork()
	if err != nil {
		return nil, fmt.Errorf("find active work: %w", err)
	}
	if active != nil && active.Begin.Before(start) && now.After(start) {
		activities = append(activities, *active)
	}

	// Intermission durations and counts, grouped by parent work entry.
	type breaks struct {
		seconds int64
		count   int
	}
	breaksByParent := make(map[string]breaks)
	for i := range activities {
		a := &activities[i]
		if !a.IsIntermission() {
			continue
		}
		b := breaksByParent[a.ParentID]
		b.seconds += int64(a.LiveDuration(now) / time.Second)
		b.count++
		breaksByParent[a.ParentID] = b
	}

	leaves := make(map[leafKey]*leafAgg)
	for i := range activities {
		a := &activities[i]
		if !a.IsWork() {
			continue
		}
		if !match(a.Category) {
			continue
		}

		key := leafKey{description: a.Description}
		key.category, key.subcategory = e.splitCategory(a.Category)

		agg := leaves[key]
		if agg == nil {
			agg = &leafAgg{}
			leaves[key] = agg
		}
		agg.sessions++
		agg.duration += int64(a.LiveDuration(now) / time.Second)
		if b, ok := breaksByParent[a.ID]; ok {
			agg.breakSec += b.seconds
			agg.breakCount += b.count
		}
	}

	return buildSummary(start, end, leaves), nil
}

// splitCategory separates the top-level category from the sub-category on
// the configured separator. Only the first separator splits; deeper
// levels stay part of the sub-category string.
func (e *Engine) splitCategory(category string) (string, string) {
	top, sub, found := strings.Cut(category, e.separator)
	if !found {
		return category, ""
	}
	return top, sub
}

func compileFilter(filter Filter) (func(string) bool, error) {
	if filter.Category == "" {
		return func(string) bool { return true }, nil
	}
	pattern := filter.Category
	if !filter.CaseSensitive {
		pattern = strings.ToLower(pattern)
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid category filter %q: %w", filter.Category, err)
	}
	return func(category string) bool {
		if !filter.CaseSensitive {
			category = strings.ToLower(category)
		}
		return g.Match(category)
	}, nil
}

func buildSummary(start, end time.Time, leaves map[leafKey]*leafAgg) *Summary {
	summary := &Summary{Start: start, End: end}

	// category -> subcategory -> entries
	tree := make(map[string]map[string][]EntrySummary)
	for key, agg := range leaves {
		subs := tree[key.category]
		if subs == nil {
			subs = make(map[string][]EntrySummary)
			tree[key.category] = subs
		}
		subs[key.subcategory] = append(subs[key.subcategory], EntrySummary{
			Description:      key.description,
			Sessions:         agg.sessions,
			TotalDurationSec: agg.duration,
			TotalBreakSec:    agg.breakSec,
			TotalBreakCount:  agg.breakCount,
		})
	}

	for _, category := range sortedKeys(tree) {
		group := CategoryGroup{Name: category}
		subs := tree[category]
		for _, sub := range sortedKeys(subs) {
			entries := subs[sub]
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].Description < entries[j].Description
			})
			for _, entry := range entries {
				group.TotalDurationSec += entry.TotalDurationSec
				group.TotalBreakSec += entry.TotalBreakSec
				group.TotalBreakCount += entry.TotalBreakCount
			}
			group.Subcategories = append(group.Subcategories, SubcategoryGroup{
				Name:    sub,
				Entries: entries,
			})
		}
		summary.TotalDurationSec += group.TotalDurationSec
		summary.TotalBreakSec += group.TotalBreakSec
		summary.TotalBreakCount += group.TotalBreakCount
		summary.Categories = append(summary.Categories, group)
	}
	return summary
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
