package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"coinledger/internal/application/service"
	"coinledger/internal/domain/model"
)

// Section is one calendar-day bucket of the feed, newest entry first.
type Section struct {
	Day     time.Time     `json:"day"`
	Label   string        `json:"label"`
	Entries []model.Entry `json:"entries"`
}

// Feed accumulates ledger pages on the client side of the Ledger: it
// tracks the current page, guards against overlapping loads and groups
// the accumulated entries by calendar day.
type Feed struct {
	ledger   *service.Ledger
	pageSize int
	now      func() time.Time

	mu          sync.Mutex
	currentPage int
	loading     bool
	hasMore     bool
	entries     []model.Entry
}

func NewFeed(ledger *service.Ledger, pageSize int) *Feed {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Feed{
		ledger:   ledger,
		pageSize: pageSize,
		now:      time.Now,
		hasMore:  true,
	}
}

// LoadFirst resets the accumulation and fetches page 0.
func (f *Feed) LoadFirst(ctx context.Context) {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return
	}
	f.loading = true
	f.mu.Unlock()

	page := f.ledger.Entries(ctx, 0, f.pageSize)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentPage = 0
	f.entries = page
	// A full page is assumed to mean more data exists. When the total
	// count is an exact multiple of the page size this leaves hasMore
	// true once more than necessary; the extra load returns an empty
	// page and clears it.
	f.hasMore = len(page) == f.pageSize
	f.loading = false
}

// LoadMore fetches the next page and appends it. No-op while a load is
// running or when the last page was short.
func (f *Feed) LoadMore(ctx context.Context) {
	f.mu.Lock()
	if f.loading || !f.hasMore {
		f.mu.Unlock()
		return
	}
	f.loading = true
	next := f.currentPage + 1
	f.mu.Unlock()

	page := f.ledger.Entries(ctx, next, f.pageSize)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentPage = next
	if len(page) > 0 {
		f.entries = append(f.entries, page...)
	}
	f.hasMore = len(page) == f.pageSize
	f.loading = false
}

func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

// Entries returns a copy of everything accumulated so far.
func (f *Feed) Entries() []model.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Sections partitions the accumulated entries into calendar-day
// buckets keyed by the entry's own timestamp. Days are newest first,
// entries within a day newest first.
func (f *Feed) Sections() []Section {
	f.mu.Lock()
	entries := make([]model.Entry, len(f.entries))
	copy(entries, f.entries)
	now := f.now()
	f.mu.Unlock()

	buckets := make(map[time.Time][]model.Entry)
	for _, e := range entries {
		day := dayOf(e.CreatedAt)
		buckets[day] = append(buckets[day], e)
	}

	sections := make([]Section, 0, len(buckets))
	for day, group := range buckets {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CreatedAt.After(group[j].CreatedAt)
		})
		sections = append(sections, Section{
			Day:     day,
			Label:   dayLabel(day, now),
			Entries: group,
		})
	}
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Day.After(sections[j].Day)
	})
	return sections
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayLabel(day, now time.Time) string {
	today := dayOf(now)
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return day.Format("2 Jan 2006")
	}
}
