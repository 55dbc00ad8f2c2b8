package main

import (
	"net/http"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/catalog"
	"github.com/cinebuzz/discovery/services/common"
	"github.com/cinebuzz/discovery/services/omdb"
	"github.com/cinebuzz/discovery/services/tmdb"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func configureCatalog(f []cli.Flag) []cli.Flag {
	f = common.RegisterHTTPClientFlags(f)
	f = omdb.RegisterFlags(f)
	f = tmdb.RegisterFlags(f)
	f = catalog.RegisterFlags(f)
	return f
}

func makeAggregator(c *cli.Context, cl *http.Client) *catalog.Aggregator {
	var providers []catalog.Provider

	// Setting cache config
	cc := catalog.NewCacheConfig(c)

	// Setting TMDB API
	tmdbApi := tmdb.New(c, cl)

	// Setting OMDB API
	omdbApi := omdb.New(c, cl)

	// Providers are registered in merge precedence order
	if p := tmdb.NewProvider(tmdbApi, models.MediaTypeMovie); p != nil {
		providers = append(providers, catalog.NewCachedProvider(p, cc))
	}
	if p := omdb.NewProvider(omdbApi, models.MediaTypeMovie); p != nil {
		providers = append(providers, catalog.NewCachedProvider(p, cc))
	}
	if p := tmdb.NewProvider(tmdbApi, models.MediaTypeTV); p != nil {
		providers = append(providers, catalog.NewCachedProvider(p, cc))
	}
	if len(providers) == 0 {
		log.Warn("no catalog provider configured, set tmdb-api-key or omdb-api-key")
	}

	// Setting Aggregator
	return catalog.NewAggregator(catalog.NewConfig(c), providers...)
}
