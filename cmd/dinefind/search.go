package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/dinefind/internal/domain/search/filter"
	"github.com/kailas-cloud/dinefind/internal/domain/search/mode"
	domsession "github.com/kailas-cloud/dinefind/internal/domain/session"
	"github.com/kailas-cloud/dinefind/internal/domain/upload"
	sessionuc "github.com/kailas-cloud/dinefind/internal/usecase/session"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Run a one-shot search session and print the results",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "term", Usage: "Search term"},
			&cli.StringFlag{Name: "mode", Usage: "Text search mode: name, cuisine or country"},
			&cli.StringFlag{Name: "distance", Usage: "Search radius around --lat/--lon"},
			&cli.StringFlag{Name: "lat", Usage: "Latitude for distance search"},
			&cli.StringFlag{Name: "lon", Usage: "Longitude for distance search"},
			&cli.StringFlag{Name: "min-price", Usage: "Minimum average cost for two"},
			&cli.StringFlag{Name: "max-price", Usage: "Maximum average cost for two"},
			&cli.StringFlag{Name: "image", Usage: "Search by a dish photo (JPEG or PNG file)"},
			&cli.IntFlag{Name: "page", Usage: "Result page", Value: 1},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			d, err := newDeps(c)
			if err != nil {
				return err
			}
			defer d.close()

			st, err := runSearch(ctx, d, searchInput{
				term:     c.String("term"),
				mode:     c.String("mode"),
				distance: c.String("distance"),
				lat:      c.String("lat"),
				lon:      c.String("lon"),
				minPrice: c.String("min-price"),
				maxPrice: c.String("max-price"),
				image:    c.String("image"),
				page:     c.Int("page"),
			})
			if err != nil {
				return err
			}
			fmt.Println(renderResults(st))
			return nil
		},
	}
}

type searchInput struct {
	term, mode         string
	distance, lat, lon string
	minPrice, maxPrice string
	image              string
	page               int
}

// filtered reports whether any filter flag was given.
func (in searchInput) filtered() bool {
	return in.term != "" || in.mode != "" || in.distance != "" ||
		in.lat != "" || in.lon != "" || in.minPrice != "" || in.maxPrice != ""
}

// runSearch drives a session the way the search view does: mount, edit
// the filter panel, press search, then page.
func runSearch(ctx context.Context, d *deps, in searchInput) (domsession.State, error) {
	registry := sessionuc.NewRegistry(d.backend, sessionuc.Options{
		State: domsession.Options{
			PageLimit:         d.cfg.Search.PageLimit,
			WindowSize:        d.cfg.Search.WindowSize,
			FallbackThumbnail: d.cfg.Search.FallbackThumbnail,
		},
	}, d.logger)
	sess := registry.Create(ctx)
	defer func() { _ = registry.Delete(sess.ID()) }()
	sess.Wait()

	if in.image != "" {
		data, err := os.ReadFile(in.image)
		if err != nil {
			return domsession.State{}, fmt.Errorf("read image: %w", err)
		}
		img, err := upload.New(in.image, data, d.cfg.Search.MaxImageBytes)
		if err != nil {
			return domsession.State{}, fmt.Errorf("image %s: %w", in.image, err)
		}
		sess.SubmitImage(ctx, img)
		sess.Wait()
		return sess.Snapshot(), nil
	}

	if in.filtered() {
		f, err := buildFilters(sess.Snapshot().Filters(), in)
		if err != nil {
			return domsession.State{}, err
		}
		sess.SearchWith(ctx, f)
		sess.Wait()
	}

	if in.page > 1 {
		if _, err := sess.Goto(ctx, in.page); err != nil {
			return domsession.State{}, fmt.Errorf("page %d: %w", in.page, err)
		}
		sess.Wait()
	}
	return sess.Snapshot(), nil
}

// buildFilters applies every filter flag to f so the search runs once.
func buildFilters(f filter.State, in searchInput) (filter.State, error) {
	if in.mode != "" {
		m, ok := mode.Parse(in.mode)
		if !ok {
			return f, fmt.Errorf("unknown mode %q: want name, cuisine or country", in.mode)
		}
		next, err := f.WithMode(m)
		if err != nil {
			return f, err //nolint:wrapcheck // already wrapped by the filter
		}
		f = next
	}
	f = f.WithTerm(in.term)

	var errs []error
	set := func(next filter.State, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		f = next
	}
	if in.lat != "" {
		set(f.WithCoordinate(filter.Latitude, in.lat))
	}
	if in.lon != "" {
		set(f.WithCoordinate(filter.Longitude, in.lon))
	}
	if in.distance != "" {
		set(f.WithDistance(in.distance))
	}
	if in.minPrice != "" || in.maxPrice != "" {
		f = f.WithPriceRange(in.minPrice, in.maxPrice)
	}
	return f, errors.Join(errs...)
}
