package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/catalog"
	"github.com/cinebuzz/discovery/services/common"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

const (
	searchTypeFlag    = "type"
	searchFeedFlag    = "feed"
	searchGenreIDFlag = "genre-id"
	searchPageFlag    = "page"
	searchSortFlag    = "sort"
	searchQualityFlag = "quality"
)

func makeSearchCMD() cli.Command {
	searchCMD := cli.Command{
		Name:      "search",
		Usage:     "Runs one catalog aggregation and prints the result as json",
		ArgsUsage: "[query]",
		Action:    search,
	}
	configureSearch(&searchCMD)
	return searchCMD
}

func configureSearch(c *cli.Command) {
	c.Flags = configureCatalog(c.Flags)
	c.Flags = append(c.Flags,
		cli.StringFlag{
			Name:  searchTypeFlag,
			Usage: "media type (movie, tv)",
			Value: "movie",
		},
		cli.StringFlag{
			Name:  searchFeedFlag,
			Usage: "feed used without a query (trending, top_rated, new_releases, genre)",
			Value: string(catalog.FeedTrending),
		},
		cli.IntFlag{
			Name:  searchGenreIDFlag,
			Usage: "genre id of the genre feed",
		},
		cli.IntFlag{
			Name:  searchPageFlag,
			Usage: "page",
			Value: 1,
		},
		cli.StringFlag{
			Name:  searchSortFlag,
			Usage: "sort (trending, top_rated, newest, oldest, most_reviewed)",
		},
		cli.BoolFlag{
			Name:  searchQualityFlag,
			Usage: "drop records without poster or rating",
		},
	)
}

func search(c *cli.Context) error {
	t, ok := models.ParseMediaType(c.String(searchTypeFlag))
	if !ok {
		return errors.Errorf("unknown media type %q", c.String(searchTypeFlag))
	}

	// Setting HTTP Client
	cl := common.NewHTTPClient(c)

	// Setting Aggregator
	agg := makeAggregator(c, cl)

	ctx := context.Background()
	var res *catalog.Result
	if q := strings.Join(c.Args(), " "); q != "" {
		res = agg.Search(ctx, &catalog.SearchRequest{
			Type:  t,
			Query: q,
			Page:  c.Int(searchPageFlag),
		})
	} else {
		f, ok := catalog.ParseFeed(c.String(searchFeedFlag))
		if !ok {
			return errors.Errorf("unknown feed %q", c.String(searchFeedFlag))
		}
		if f == catalog.FeedGenre && c.Int(searchGenreIDFlag) == 0 {
			return errors.New("genre feed requires genre-id")
		}
		res = agg.Feed(ctx, &catalog.FeedRequest{
			Type:        t,
			Feed:        f,
			GenreID:     c.Int(searchGenreIDFlag),
			Page:        c.Int(searchPageFlag),
			Sort:        models.ParseSortType(c.String(searchSortFlag)),
			QualityOnly: c.Bool(searchQualityFlag),
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
