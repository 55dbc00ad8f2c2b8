package omdb

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cinebuzz/discovery/services/common"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	omdbApiKeyFlag       = "omdb-api-key"
	omdbApiSecureFlag    = "omdb-api-secure"
	omdbApiHostFlag      = "omdb-api-host"
	omdbApiPortFlag      = "omdb-api-port"
	omdbApiRateLimitFlag = "omdb-rate-limit"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   omdbApiHostFlag,
			Usage:  "omdb api host",
			EnvVar: "OMDB_API_HOST",
			Value:  "www.omdbapi.com",
		},
		cli.IntFlag{
			Name:   omdbApiPortFlag,
			Usage:  "omdb api port",
			EnvVar: "OMDB_API_PORT",
			Value:  443,
		},
		cli.BoolTFlag{
			Name:   omdbApiSecureFlag,
			Usage:  "omdb api secure (https)",
			EnvVar: "OMDB_API_SECURE",
		},
		cli.StringFlag{
			Name:   omdbApiKeyFlag,
			Usage:  "omdb api key",
			Value:  "",
			EnvVar: "OMDB_API_KEY",
		},
		cli.Float64Flag{
			Name:   omdbApiRateLimitFlag,
			Usage:  "omdb requests per second (0 disables limiting)",
			Value:  5,
			EnvVar: "OMDB_RATE_LIMIT",
		},
	)
}

type OmdbType string

const (
	OmdbTypeMovie   OmdbType = "movie"
	OmdbTypeSeries  OmdbType = "series"
	OmdbTypeEpisode OmdbType = "episode"
)

func (t OmdbType) String() string {
	return string(t)
}

// NotAvailable is the placeholder OMDb uses for missing fields.
const NotAvailable = "N/A"

type SearchHit struct {
	Title  string   `json:"Title"`
	Year   string   `json:"Year"`
	ImdbID string   `json:"imdbID"`
	Type   OmdbType `json:"Type"`
	Poster string   `json:"Poster"`
}

type SearchResponse struct {
	Search       []SearchHit `json:"Search"`
	TotalResults string      `json:"totalResults"`
	Response     string      `json:"Response"`
	Error        string      `json:"Error"`
}

func (r *SearchResponse) Total() int {
	n, _ := strconv.Atoi(r.TotalResults)
	return n
}

type Info struct {
	Title        string   `json:"Title"`
	Year         string   `json:"Year"`
	Rated        string   `json:"Rated"`
	Released     string   `json:"Released"`
	Runtime      string   `json:"Runtime"`
	Genre        string   `json:"Genre"`
	Director     string   `json:"Director"`
	Actors       string   `json:"Actors"`
	Plot         string   `json:"Plot"`
	Language     string   `json:"Language"`
	Poster       string   `json:"Poster"`
	ImdbRating   string   `json:"imdbRating"`
	ImdbID       string   `json:"imdbID"`
	Type         OmdbType `json:"Type"`
	TotalSeasons string   `json:"totalSeasons"`
	Response     string   `json:"Response"`
	Error        string   `json:"Error"`
}

// ApiError is an OMDb answer with Response "False" other than "not found".
type ApiError struct {
	Message string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("omdb error: %v", e.Message)
}

type Api struct {
	url            string
	f              *common.Fetcher
	prepareRequest func(r *http.Request) (*http.Request, error)
}

func New(c *cli.Context, cl *http.Client) *Api {
	host := c.String(omdbApiHostFlag)
	port := c.Int(omdbApiPortFlag)
	secure := c.BoolT(omdbApiSecureFlag)
	key := c.String(omdbApiKeyFlag)
	if key == "" {
		return nil
	}
	protocol := "http"
	if secure {
		protocol = "https"
	}
	u := fmt.Sprintf("%v://%v:%v", protocol, host, port)
	log.Infof("omdb api endpoint %v", u)
	return NewApi(u, key, common.NewFetcher("omdb", cl, c.Float64(omdbApiRateLimitFlag)))
}

func NewApi(u string, key string, f *common.Fetcher) *Api {
	prepareRequest := func(r *http.Request) (*http.Request, error) {
		q := r.URL.Query()
		q.Set("apikey", key)
		r.URL.RawQuery = q.Encode()
		return r, nil
	}
	return &Api{
		url:            strings.TrimSuffix(u, "/"),
		f:              f,
		prepareRequest: prepareRequest,
	}
}

func (api *Api) get(ctx context.Context, params map[string]string, v any) error {
	return api.f.GetJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.url+"/", nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
		return api.prepareRequest(req)
	}, v)
}

func checkResponse(response, message string) (found bool, err error) {
	if response == "True" {
		return true, nil
	}
	if strings.Contains(strings.ToLower(message), "not found") {
		return false, nil
	}
	return false, &ApiError{Message: message}
}

// Search returns nil when nothing matched the query.
func (api *Api) Search(ctx context.Context, query string, omdbType OmdbType, page int) (*SearchResponse, error) {
	var res SearchResponse
	err := api.get(ctx, map[string]string{
		"s":    query,
		"type": omdbType.String(),
		"page": strconv.Itoa(page),
	}, &res)
	if err != nil {
		return nil, errors.Wrap(err, "search")
	}
	found, err := checkResponse(res.Response, res.Error)
	if err != nil || !found {
		return nil, err
	}
	return &res, nil
}

// GetByID returns nil when the title does not exist.
func (api *Api) GetByID(ctx context.Context, imdbID string) (*Info, error) {
	var res Info
	err := api.get(ctx, map[string]string{
		"i":    imdbID,
		"plot": "full",
	}, &res)
	if err != nil {
		return nil, errors.Wrapf(err, "get %v", imdbID)
	}
	found, err := checkResponse(res.Response, res.Error)
	if err != nil || !found {
		return nil, err
	}
	return &res, nil
}
