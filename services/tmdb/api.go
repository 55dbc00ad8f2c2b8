package tmdb

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/common"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/text/language"
)

const (
	tmdbApiKeyFlag       = "tmdb-api-key"
	tmdbApiURLFlag       = "tmdb-api-url"
	tmdbImageURLFlag     = "tmdb-image-url"
	tmdbLanguageFlag     = "tmdb-language"
	tmdbApiRateLimitFlag = "tmdb-rate-limit"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   tmdbApiKeyFlag,
			Usage:  "tmdb api key",
			EnvVar: "TMDB_API_KEY",
		},
		cli.StringFlag{
			Name:   tmdbApiURLFlag,
			Usage:  "tmdb api url",
			Value:  "https://api.themoviedb.org/3",
			EnvVar: "TMDB_API_URL",
		},
		cli.StringFlag{
			Name:   tmdbImageURLFlag,
			Usage:  "tmdb image base url",
			Value:  "https://image.tmdb.org/t/p",
			EnvVar: "TMDB_IMAGE_URL",
		},
		cli.StringFlag{
			Name:   tmdbLanguageFlag,
			Usage:  "tmdb response language (BCP 47)",
			Value:  "en-US",
			EnvVar: "TMDB_LANGUAGE",
		},
		cli.Float64Flag{
			Name:   tmdbApiRateLimitFlag,
			Usage:  "tmdb requests per second (0 disables limiting)",
			Value:  20,
			EnvVar: "TMDB_RATE_LIMIT",
		},
	)
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Network struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LogoPath string `json:"logo_path"`
}

type CastMember struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
}

// Result is a list entry. Movies carry Title/ReleaseDate, shows Name/FirstAirDate.
type Result struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	VoteAverage      float64 `json:"vote_average"`
	Overview         string  `json:"overview"`
	GenreIDs         []int   `json:"genre_ids"`
	OriginalLanguage string  `json:"original_language"`
}

type ListResponse struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

type Details struct {
	Result
	Runtime          int       `json:"runtime"`
	Genres           []Genre   `json:"genres"`
	NumberOfSeasons  int       `json:"number_of_seasons"`
	NumberOfEpisodes int       `json:"number_of_episodes"`
	Status           string    `json:"status"`
	Networks         []Network `json:"networks"`
	Credits          *Credits  `json:"credits"`
}

type genresResponse struct {
	Genres []Genre `json:"genres"`
}

type Api struct {
	url      string
	imageURL string
	key      string
	lang     string
	f        *common.Fetcher
}

func New(c *cli.Context, cl *http.Client) *Api {
	key := c.String(tmdbApiKeyFlag)
	if key == "" {
		return nil
	}
	u := c.String(tmdbApiURLFlag)
	log.Infof("tmdb api endpoint %v", u)
	return NewApi(u, c.String(tmdbImageURLFlag), key, c.String(tmdbLanguageFlag),
		common.NewFetcher("tmdb", cl, c.Float64(tmdbApiRateLimitFlag)))
}

func NewApi(u, imageURL, key, lang string, f *common.Fetcher) *Api {
	return &Api{
		url:      strings.TrimSuffix(u, "/"),
		imageURL: strings.TrimSuffix(imageURL, "/"),
		key:      key,
		lang:     normalizeLanguage(lang),
		f:        f,
	}
}

// normalizeLanguage canonicalizes a BCP 47 tag and falls back to en-US.
func normalizeLanguage(l string) string {
	tag, err := language.Parse(l)
	if err != nil {
		if l != "" {
			log.WithError(err).WithField("language", l).Warn("invalid tmdb language, using en-US")
		}
		return "en-US"
	}
	return tag.String()
}

func (api *Api) Language() string {
	return api.lang
}

func (api *Api) image(size, path string) string {
	if path == "" {
		return ""
	}
	return api.imageURL + "/" + size + path
}

func (api *Api) get(ctx context.Context, path string, params url.Values, v any) error {
	return api.f.GetJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.url+path, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		q.Set("api_key", api.key)
		q.Set("language", api.lang)
		req.URL.RawQuery = q.Encode()
		return req, nil
	}, v)
}

func pageParams(page int) url.Values {
	if page <= 0 {
		page = 1
	}
	return url.Values{"page": []string{strconv.Itoa(page)}}
}

func (api *Api) Search(ctx context.Context, t models.MediaType, query string, page int) (*ListResponse, error) {
	p := pageParams(page)
	p.Set("query", query)
	p.Set("include_adult", "false")
	var res ListResponse
	if err := api.get(ctx, "/search/"+t.String(), p, &res); err != nil {
		return nil, errors.Wrapf(err, "search %v", t)
	}
	return &res, nil
}

// List fetches one of the curated lists (popular, top_rated, now_playing, airing_today).
func (api *Api) List(ctx context.Context, t models.MediaType, list string, page int) (*ListResponse, error) {
	var res ListResponse
	if err := api.get(ctx, "/"+t.String()+"/"+common.EscapePath(list), pageParams(page), &res); err != nil {
		return nil, errors.Wrapf(err, "list %v/%v", t, list)
	}
	return &res, nil
}

func (api *Api) Discover(ctx context.Context, t models.MediaType, genreID int, page int) (*ListResponse, error) {
	p := pageParams(page)
	p.Set("with_genres", strconv.Itoa(genreID))
	p.Set("sort_by", "popularity.desc")
	p.Set("include_adult", "false")
	var res ListResponse
	if err := api.get(ctx, "/discover/"+t.String(), p, &res); err != nil {
		return nil, errors.Wrapf(err, "discover %v", t)
	}
	return &res, nil
}

// Details returns nil when TMDB does not know the id.
func (api *Api) Details(ctx context.Context, t models.MediaType, id int) (*Details, error) {
	var res Details
	err := api.get(ctx, "/"+t.String()+"/"+strconv.Itoa(id), url.Values{
		"append_to_response": []string{"credits"},
	}, &res)
	var se *common.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "details %v/%v", t, id)
	}
	return &res, nil
}

func (api *Api) Genres(ctx context.Context, t models.MediaType) ([]Genre, error) {
	var res genresResponse
	if err := api.get(ctx, "/genre/"+t.String()+"/list", nil, &res); err != nil {
		return nil, errors.Wrapf(err, "genres %v", t)
	}
	return res.Genres, nil
}
