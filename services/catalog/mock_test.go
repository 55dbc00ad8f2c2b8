package catalog

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cinebuzz/discovery/models"
)

// mockProvider implements Provider for testing
type mockProvider struct {
	name    string
	tpe     models.MediaType
	prefix  string
	records []models.MediaRecord
	status  Status
	delay   time.Duration
	genres  []models.Genre
	calls   atomic.Int32
	pages   func(page int) []models.MediaRecord
}

func (m *mockProvider) GetName() string {
	return m.name
}

func (m *mockProvider) Type() models.MediaType {
	if m.tpe == "" {
		return models.MediaTypeMovie
	}
	return m.tpe
}

func (m *mockProvider) Owns(id string) bool {
	return m.prefix != "" && strings.HasPrefix(id, m.prefix)
}

func (m *mockProvider) wait(ctx context.Context) bool {
	if m.delay <= 0 {
		return true
	}
	select {
	case <-time.After(m.delay):
		return true
	case <-ctx.Done():
		return false
	}
}

func (m *mockProvider) page(ctx context.Context, page int) *Page {
	m.calls.Add(1)
	if !m.wait(ctx) {
		return FailedPage(StatusUnavailable)
	}
	if m.status.Failed() {
		return FailedPage(m.status)
	}
	records := m.records
	if m.pages != nil {
		records = m.pages(page)
	}
	return NewPage(records, len(records), 1)
}

func (m *mockProvider) Search(ctx context.Context, query string, page int) *Page {
	return m.page(ctx, page)
}

func (m *mockProvider) List(ctx context.Context, q ListQuery) *Page {
	return m.page(ctx, q.Page)
}

func (m *mockProvider) Get(ctx context.Context, id string) *Item {
	m.calls.Add(1)
	if m.status.Failed() {
		return FailedItem(m.status)
	}
	for i := range m.records {
		if m.records[i].ID == id {
			return NewItem(&m.records[i])
		}
	}
	return NewItem(nil)
}

func (m *mockProvider) Genres(ctx context.Context) *GenreList {
	m.calls.Add(1)
	if m.status.Failed() {
		return FailedGenreList(m.status)
	}
	return NewGenreList(m.genres)
}

func rec(id, title string, year int, rating float64) models.MediaRecord {
	return models.MediaRecord{
		ID:        id,
		Title:     title,
		Year:      year,
		Rating:    rating,
		PosterURL: "https://img/" + id + ".jpg",
	}
}

func ids(records []models.MediaRecord) []string {
	res := make([]string, len(records))
	for i, r := range records {
		res[i] = r.ID
	}
	return res
}
