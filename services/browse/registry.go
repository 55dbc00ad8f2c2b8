package browse

import (
	"time"

	"github.com/cinebuzz/discovery/services/catalog"
	"github.com/urfave/cli"
	"github.com/webtor-io/lazymap"
)

const (
	debounceFlag      = "browse-debounce"
	pagesFlag         = "browse-feed-pages"
	sessionExpireFlag = "browse-session-expire"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   debounceFlag,
			Usage:  "quiet period of search input before a search is started",
			Value:  500 * time.Millisecond,
			EnvVar: "BROWSE_DEBOUNCE",
		},
		cli.IntFlag{
			Name:   pagesFlag,
			Usage:  "upstream pages fetched per browse page",
			Value:  2,
			EnvVar: "BROWSE_FEED_PAGES",
		},
		cli.DurationFlag{
			Name:   sessionExpireFlag,
			Usage:  "lifetime of a visitor's browsing state",
			Value:  time.Hour,
			EnvVar: "BROWSE_SESSION_EXPIRE",
		},
	)
}

type Config struct {
	Debounce      time.Duration
	Pages         int
	SessionExpire time.Duration
}

func NewConfig(c *cli.Context) *Config {
	return &Config{
		Debounce:      c.Duration(debounceFlag),
		Pages:         c.Int(pagesFlag),
		SessionExpire: c.Duration(sessionExpireFlag),
	}
}

// Registry hands out one Controller per visitor id.
type Registry struct {
	src         Source
	rc          catalog.ReviewCounter
	cfg         *Config
	controllers *lazymap.LazyMap[*Controller]
}

func NewRegistry(src Source, cfg *Config) *Registry {
	return &Registry{
		src: src,
		cfg: cfg,
		controllers: lazymap.New[*Controller](&lazymap.Config{
			Expire: cfg.SessionExpire,
		}),
	}
}

func (s *Registry) WithReviewCounter(rc catalog.ReviewCounter) *Registry {
	s.rc = rc
	return s
}

func (s *Registry) Get(id string) *Controller {
	ctrl, _ := s.controllers.Get(id, func() (*Controller, error) {
		return NewController(s.src, s.cfg).WithReviewCounter(s.rc), nil
	})
	return ctrl
}
