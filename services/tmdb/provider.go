package tmdb

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/catalog"
	"github.com/cinebuzz/discovery/services/common"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/webtor-io/lazymap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const maxCast = 5

// Provider adapts one TMDB media type (movie or tv) to catalog.Provider.
type Provider struct {
	api    *Api
	tpe    models.MediaType
	prefix string
	// genre names by id, list endpoints only return ids
	genreNames *lazymap.LazyMap[map[int]string]
}

var (
	_ catalog.Provider  = (*Provider)(nil)
	_ catalog.Localized = (*Provider)(nil)
)

func NewProvider(api *Api, t models.MediaType) *Provider {
	if api == nil {
		return nil
	}
	return &Provider{
		api:    api,
		tpe:    t,
		prefix: "tmdb_" + t.String() + "_",
		genreNames: lazymap.New[map[int]string](&lazymap.Config{
			Expire:      24 * time.Hour,
			ErrorExpire: 30 * time.Second,
			StoreErrors: true,
		}),
	}
}

func (s *Provider) GetName() string {
	return "tmdb_" + s.tpe.String()
}

func (s *Provider) Type() models.MediaType {
	return s.tpe
}

func (s *Provider) Language() string {
	return s.api.Language()
}

func (s *Provider) Owns(id string) bool {
	return strings.HasPrefix(id, s.prefix)
}

func statusFromError(err error) catalog.Status {
	if errors.Is(err, common.ErrMalformed) {
		return catalog.StatusMalformed
	}
	return catalog.StatusUnavailable
}

func (s *Provider) fail(op string, err error) catalog.Status {
	st := statusFromError(err)
	log.WithError(err).
		WithField("provider", s.GetName()).
		WithField("op", op).
		Warn("tmdb request failed")
	catalog.ObserveRequest(s.GetName(), op, st)
	return st
}

func (s *Provider) toPage(ctx context.Context, op string, res *ListResponse, err error) *catalog.Page {
	if err != nil {
		return catalog.FailedPage(s.fail(op, err))
	}
	names := s.names(ctx)
	records := make([]models.MediaRecord, 0, len(res.Results))
	for i := range res.Results {
		records = append(records, *s.toRecord(&res.Results[i], names))
	}
	p := catalog.NewPage(records, res.TotalResults, res.TotalPages)
	catalog.ObserveRequest(s.GetName(), op, p.Status)
	return p
}

func (s *Provider) Search(ctx context.Context, query string, page int) *catalog.Page {
	res, err := s.api.Search(ctx, s.tpe, query, page)
	return s.toPage(ctx, "search", res, err)
}

func (s *Provider) List(ctx context.Context, q catalog.ListQuery) *catalog.Page {
	var (
		res *ListResponse
		err error
	)
	switch q.Category {
	case catalog.CategoryGenre:
		if q.GenreID <= 0 {
			return catalog.NewPage(nil, 0, 0)
		}
		res, err = s.api.Discover(ctx, s.tpe, q.GenreID, q.Page)
	case catalog.CategoryPopular, catalog.CategoryTopRated:
		res, err = s.api.List(ctx, s.tpe, string(q.Category), q.Page)
	case catalog.CategoryNowPlaying:
		if s.tpe != models.MediaTypeMovie {
			return catalog.NewPage(nil, 0, 0)
		}
		res, err = s.api.List(ctx, s.tpe, string(q.Category), q.Page)
	case catalog.CategoryAiringToday:
		if s.tpe != models.MediaTypeTV {
			return catalog.NewPage(nil, 0, 0)
		}
		res, err = s.api.List(ctx, s.tpe, string(q.Category), q.Page)
	default:
		return catalog.NewPage(nil, 0, 0)
	}
	return s.toPage(ctx, "list", res, err)
}

func (s *Provider) Get(ctx context.Context, id string) *catalog.Item {
	n, err := strconv.Atoi(strings.TrimPrefix(id, s.prefix))
	if err != nil || n <= 0 {
		return catalog.NewItem(nil)
	}
	d, err := s.api.Details(ctx, s.tpe, n)
	if err != nil {
		return catalog.FailedItem(s.fail("get", err))
	}
	if d == nil {
		catalog.ObserveRequest(s.GetName(), "get", catalog.StatusEmpty)
		return catalog.NewItem(nil)
	}
	catalog.ObserveRequest(s.GetName(), "get", catalog.StatusOK)
	return catalog.NewItem(s.toDetailedRecord(d))
}

func (s *Provider) Genres(ctx context.Context) *catalog.GenreList {
	gs, err := s.api.Genres(ctx, s.tpe)
	if err != nil {
		return catalog.FailedGenreList(s.fail("genres", err))
	}
	res := make([]models.Genre, len(gs))
	for i, g := range gs {
		res[i] = models.Genre{ID: g.ID, Name: g.Name}
	}
	catalog.ObserveRequest(s.GetName(), "genres", catalog.StatusOK)
	return catalog.NewGenreList(res)
}

// names resolves genre ids of list entries. A failed lookup leaves genres empty.
func (s *Provider) names(ctx context.Context) map[int]string {
	m, err := s.genreNames.Get(s.api.Language(), func() (map[int]string, error) {
		gs, err := s.api.Genres(ctx, s.tpe)
		if err != nil {
			return nil, err
		}
		m := make(map[int]string, len(gs))
		for _, g := range gs {
			m[g.ID] = g.Name
		}
		return m, nil
	})
	if err != nil {
		log.WithError(err).WithField("provider", s.GetName()).Debug("genre names unavailable")
		return nil
	}
	return m
}

func year(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, _ := strconv.Atoi(date[:4])
	return y
}

// languageName turns an ISO 639-1 code into an English display name.
func languageName(code string) string {
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if n := display.English.Languages().Name(tag); n != "" {
		return n
	}
	return code
}

func (s *Provider) toRecord(r *Result, names map[int]string) *models.MediaRecord {
	title, date := r.Title, r.ReleaseDate
	if s.tpe == models.MediaTypeTV {
		title, date = r.Name, r.FirstAirDate
	}
	genres := make([]string, 0, len(r.GenreIDs))
	for _, id := range r.GenreIDs {
		if n, ok := names[id]; ok {
			genres = append(genres, n)
		}
	}
	return &models.MediaRecord{
		ID:          s.prefix + strconv.Itoa(r.ID),
		Provider:    "tmdb",
		Type:        s.tpe,
		Title:       strings.TrimSpace(title),
		Year:        year(date),
		Rating:      r.VoteAverage,
		PosterURL:   s.api.image("w500", r.PosterPath),
		BackdropURL: s.api.image("original", r.BackdropPath),
		Genres:      genres,
		Plot:        r.Overview,
		Platforms:   []models.Platform{},
		Language:    languageName(r.OriginalLanguage),
	}
}

func (s *Provider) toDetailedRecord(d *Details) *models.MediaRecord {
	rec := s.toRecord(&d.Result, nil)
	for _, g := range d.Genres {
		rec.Genres = append(rec.Genres, g.Name)
	}
	if d.Credits != nil {
		for i, c := range d.Credits.Cast {
			if i == maxCast {
				break
			}
			rec.Cast = append(rec.Cast, c.Name)
		}
	}
	if s.tpe == models.MediaTypeTV {
		rec.Seasons = d.NumberOfSeasons
		rec.Episodes = d.NumberOfEpisodes
		rec.Status = d.Status
		for _, n := range d.Networks {
			rec.Platforms = append(rec.Platforms, models.Platform{
				Name:    n.Name,
				LogoURL: s.api.image("w92", n.LogoPath),
				URL:     "https://www.google.com/search?q=" + url.QueryEscape(n.Name),
			})
		}
	} else {
		rec.Runtime = d.Runtime
	}
	return rec
}
