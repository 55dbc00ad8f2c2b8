package omdb

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/catalog"
	"github.com/cinebuzz/discovery/services/common"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	IDPrefix      = "omdb_"
	pageSize      = 10
	detailWorkers = 5
)

// OMDb has no popularity endpoint, popular pages rotate over these queries.
var popularQueries = []string{"Inception", "Avengers", "Matrix", "Star Wars", "Batman"}

var topRatedIDs = []string{
	"tt0111161", "tt0068646", "tt0071562", "tt0468569", "tt0050083",
	"tt0108052", "tt0137523", "tt0109830", "tt0167260", "tt0080684",
}

var genres = []string{
	"Action", "Adventure", "Animation", "Biography", "Comedy", "Crime", "Documentary",
	"Drama", "Family", "Fantasy", "History", "Horror", "Music", "Mystery", "Romance",
	"Sci-Fi", "Sport", "Thriller", "War", "Western",
}

var platforms = []models.Platform{
	{
		Name:    "Netflix",
		LogoURL: "https://upload.wikimedia.org/wikipedia/commons/thumb/0/08/Netflix_2015_logo.svg/1280px-Netflix_2015_logo.svg.png",
		URL:     "https://netflix.com",
	},
	{
		Name:    "Prime Video",
		LogoURL: "https://upload.wikimedia.org/wikipedia/commons/thumb/1/11/Amazon_Prime_Video_logo.svg/2560px-Amazon_Prime_Video_logo.svg.png",
		URL:     "https://primevideo.com",
	},
	{
		Name:    "Disney+",
		LogoURL: "https://upload.wikimedia.org/wikipedia/commons/thumb/3/3e/Disney%2B_logo.svg/2560px-Disney%2B_logo.svg.png",
		URL:     "https://disneyplus.com",
	},
	{
		Name:    "HBO Max",
		LogoURL: "https://upload.wikimedia.org/wikipedia/commons/thumb/1/17/HBO_Max_Logo.svg/2560px-HBO_Max_Logo.svg.png",
		URL:     "https://hbomax.com",
	},
}

var startYearRegexp = regexp.MustCompile(`^\d{4}`)

var runtimeRegexp = regexp.MustCompile(`^\d+`)

// Provider adapts the OMDb api to catalog.Provider.
type Provider struct {
	api      *Api
	tpe      models.MediaType
	omdbType OmdbType
}

var _ catalog.Provider = (*Provider)(nil)

func NewProvider(api *Api, t models.MediaType) *Provider {
	if api == nil {
		return nil
	}
	ot := OmdbTypeMovie
	if t == models.MediaTypeTV {
		ot = OmdbTypeSeries
	}
	return &Provider{
		api:      api,
		tpe:      t,
		omdbType: ot,
	}
}

func (s *Provider) GetName() string {
	return "omdb_" + s.tpe.String()
}

func (s *Provider) Type() models.MediaType {
	return s.tpe
}

func (s *Provider) Owns(id string) bool {
	return strings.HasPrefix(id, IDPrefix)
}

func statusFromError(err error) catalog.Status {
	var ae *ApiError
	if errors.Is(err, common.ErrMalformed) || errors.As(err, &ae) {
		return catalog.StatusMalformed
	}
	return catalog.StatusUnavailable
}

func (s *Provider) fail(op string, err error) catalog.Status {
	st := statusFromError(err)
	log.WithError(err).
		WithField("provider", s.GetName()).
		WithField("op", op).
		Warn("omdb request failed")
	catalog.ObserveRequest(s.GetName(), op, st)
	return st
}

func (s *Provider) Search(ctx context.Context, query string, page int) *catalog.Page {
	if page <= 0 {
		page = 1
	}
	res, err := s.api.Search(ctx, query, s.omdbType, page)
	if err != nil {
		return catalog.FailedPage(s.fail("search", err))
	}
	if res == nil {
		catalog.ObserveRequest(s.GetName(), "search", catalog.StatusEmpty)
		return catalog.NewPage(nil, 0, 0)
	}
	hits := make([]string, len(res.Search))
	for i, h := range res.Search {
		hits[i] = h.ImdbID
	}
	records, failed := s.details(ctx, hits)
	if len(records) == 0 && failed > 0 {
		return catalog.FailedPage(catalog.StatusUnavailable)
	}
	catalog.ObserveRequest(s.GetName(), "search", catalog.StatusOK)
	total := res.Total()
	return catalog.NewPage(records, total, int(math.Ceil(float64(total)/pageSize)))
}

// details fetches full records concurrently, keeping the order of ids and
// skipping lookups that failed.
func (s *Provider) details(ctx context.Context, ids []string) ([]models.MediaRecord, int) {
	res := make([]*models.MediaRecord, len(ids))
	errs := make([]error, len(ids))
	var g errgroup.Group
	g.SetLimit(detailWorkers)
	for i, id := range ids {
		g.Go(func() error {
			info, err := s.api.GetByID(ctx, id)
			if err != nil {
				errs[i] = err
				return nil
			}
			if info != nil {
				res[i] = s.toRecord(info)
			}
			return nil
		})
	}
	_ = g.Wait()
	var records []models.MediaRecord
	failed := 0
	for i, r := range res {
		if errs[i] != nil {
			failed++
			s.fail("get", errs[i])
			continue
		}
		if r != nil {
			records = append(records, *r)
		}
	}
	return records, failed
}

func (s *Provider) List(ctx context.Context, q catalog.ListQuery) *catalog.Page {
	page := q.Page
	if page <= 0 {
		page = 1
	}
	switch q.Category {
	case catalog.CategoryPopular:
		n := page - 1
		query := popularQueries[n%len(popularQueries)]
		return s.Search(ctx, query, n/len(popularQueries)+1)
	case catalog.CategoryTopRated:
		if s.tpe != models.MediaTypeMovie || page > 1 {
			return catalog.NewPage(nil, len(topRatedIDs), 1)
		}
		records, failed := s.details(ctx, topRatedIDs)
		if len(records) == 0 && failed > 0 {
			return catalog.FailedPage(catalog.StatusUnavailable)
		}
		return catalog.NewPage(records, len(topRatedIDs), 1)
	}
	return catalog.NewPage(nil, 0, 0)
}

func (s *Provider) Get(ctx context.Context, id string) *catalog.Item {
	imdbID := strings.TrimPrefix(id, IDPrefix)
	info, err := s.api.GetByID(ctx, imdbID)
	if err != nil {
		return catalog.FailedItem(s.fail("get", err))
	}
	if info == nil {
		catalog.ObserveRequest(s.GetName(), "get", catalog.StatusEmpty)
		return catalog.NewItem(nil)
	}
	catalog.ObserveRequest(s.GetName(), "get", catalog.StatusOK)
	return catalog.NewItem(s.toRecord(info))
}

func (s *Provider) Genres(ctx context.Context) *catalog.GenreList {
	res := make([]models.Genre, len(genres))
	for i, g := range genres {
		res[i] = models.Genre{Name: g}
	}
	return catalog.NewGenreList(res)
}

func value(s string) string {
	s = strings.TrimSpace(s)
	if s == NotAvailable {
		return ""
	}
	return s
}

func list(s string) []string {
	s = value(s)
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}

func leadingInt(re *regexp.Regexp, s string) int {
	n, _ := strconv.Atoi(re.FindString(value(s)))
	return n
}

func (s *Provider) toRecord(info *Info) *models.MediaRecord {
	rating, err := strconv.ParseFloat(value(info.ImdbRating), 64)
	if err != nil {
		rating = 0
	}
	poster := value(info.Poster)
	tpe := models.MediaTypeMovie
	if info.Type == OmdbTypeSeries {
		tpe = models.MediaTypeTV
	}
	r := &models.MediaRecord{
		ID:          IDPrefix + info.ImdbID,
		Provider:    "omdb",
		Type:        tpe,
		Title:       strings.TrimSpace(info.Title),
		Year:        leadingInt(startYearRegexp, info.Year),
		Rating:      rating,
		PosterURL:   poster,
		BackdropURL: poster,
		Genres:      list(info.Genre),
		Plot:        value(info.Plot),
		Director:    value(info.Director),
		Cast:        list(info.Actors),
		Platforms:   assignPlatforms(info.ImdbID),
	}
	if langs := list(info.Language); len(langs) > 0 {
		r.Language = langs[0]
	}
	if tpe == models.MediaTypeTV {
		r.Seasons = leadingInt(runtimeRegexp, info.TotalSeasons)
	} else {
		r.Runtime = leadingInt(runtimeRegexp, info.Runtime)
	}
	return r
}

// assignPlatforms derives a stable set of streaming platforms from the id.
// OMDb carries no availability data.
func assignPlatforms(imdbID string) []models.Platform {
	h := fnv.New32a()
	_, _ = h.Write([]byte(imdbID))
	v := h.Sum32()
	var res []models.Platform
	if v%2 == 0 {
		res = append(res, platforms[0])
	}
	if (v>>1)%2 == 0 {
		res = append(res, platforms[1])
	}
	if (v>>2)%10 < 3 {
		res = append(res, platforms[2])
	}
	if (v>>6)%10 < 2 {
		res = append(res, platforms[3])
	}
	if len(res) == 0 {
		res = append(res, platforms[v%uint32(len(platforms))])
	}
	return res
}
