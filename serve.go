package main

import (
	wau "github.com/cinebuzz/discovery/handlers/auth"
	wb "github.com/cinebuzz/discovery/handlers/browse"
	wc "github.com/cinebuzz/discovery/handlers/catalog"
	wcm "github.com/cinebuzz/discovery/handlers/community"
	wr "github.com/cinebuzz/discovery/handlers/review"
	wwl "github.com/cinebuzz/discovery/handlers/watchlist"
	"github.com/cinebuzz/discovery/services/auth"
	"github.com/cinebuzz/discovery/services/browse"
	"github.com/cinebuzz/discovery/services/common"
	"github.com/cinebuzz/discovery/services/community"
	"github.com/cinebuzz/discovery/services/migration"
	"github.com/cinebuzz/discovery/services/review"
	"github.com/cinebuzz/discovery/services/store"
	"github.com/cinebuzz/discovery/services/watchlist"
	w "github.com/cinebuzz/discovery/services/web"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
)

func makeServeCMD() cli.Command {
	serveCMD := cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves web server",
		Action:  serve,
	}
	configureServe(&serveCMD)
	return serveCMD
}

func configureServe(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = cs.RegisterProbeFlags(c.Flags)
	c.Flags = cs.RegisterPprofFlags(c.Flags)
	c.Flags = migration.RegisterFlags(c.Flags)
	c.Flags = w.RegisterFlags(c.Flags)
	c.Flags = common.RegisterFlags(c.Flags)
	c.Flags = store.RegisterFlags(c.Flags)
	c.Flags = auth.RegisterFlags(c.Flags)
	c.Flags = browse.RegisterFlags(c.Flags)
	c.Flags = configureCatalog(c.Flags)
}

func serve(c *cli.Context) error {
	// Setting HTTP Client
	cl := common.NewHTTPClient(c)

	// Setting DB
	var pg *cs.PG
	if store.NeedsPG(c) {
		pg = cs.NewPG(c)
		defer pg.Close()

		// Setting Migrations
		err := runPGMigration(c, pg, "up")
		if err != nil {
			return err
		}
	}

	// Setting Store
	st, err := store.NewBackend(c, pg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.WithError(err).Warn("failed to close store")
		}
	}()

	var servers []cs.Servable
	// Setting Probe
	probe := cs.NewProbe(c)
	if probe != nil {
		servers = append(servers, probe)
		defer probe.Close()
	}

	// Setting Pprof
	pprof := cs.NewPprof(c)
	if pprof != nil {
		servers = append(servers, pprof)
		defer pprof.Close()
	}

	// Setting Gin
	r := gin.Default()
	r.RedirectTrailingSlash = false

	// Setting Web
	web, err := w.New(c, r)
	if err != nil {
		return err
	}
	servers = append(servers, web)
	defer web.Close()

	// Setting Auth
	a := auth.New(c, cl)

	// Setting AuthMiddleware
	auth.NewMiddleware(a).RegisterHandler(r)

	// Setting Reviews
	rs := review.New(st)

	// Setting Aggregator
	agg := makeAggregator(c, cl).WithReviewCounter(rs)

	// Setting Browse Registry
	reg := browse.NewRegistry(agg, browse.NewConfig(c)).WithReviewCounter(rs)

	// Setting AuthHandler
	wau.RegisterHandler(r, a)

	// Setting CatalogHandler
	wc.RegisterHandler(r, agg)

	// Setting BrowseHandler
	wb.RegisterHandler(r, reg, c.String(common.SessionSecretFlag))

	// Setting WatchlistHandler
	wwl.RegisterHandler(r, watchlist.New(st))

	// Setting ReviewHandler
	wr.RegisterHandler(r, rs)

	// Setting CommunityHandler
	wcm.RegisterHandler(r, community.New(st))

	// Setting Serve
	serve := cs.NewServe(servers...)

	// And SERVE!
	err = serve.Serve()
	if err != nil {
		log.WithError(err).Error("got server error")
	}
	return err
}
