package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wanderlist/wanderlist/internal/places"
	"github.com/wanderlist/wanderlist/internal/preferences"
	"github.com/wanderlist/wanderlist/pkg/logger"
	"github.com/wanderlist/wanderlist/pkg/metrics"
)

// ErrValidation matches every rejected submission.
var ErrValidation = preferences.ErrValidation

// Fetcher performs one places lookup.
type Fetcher interface {
	Fetch(ctx context.Context, q places.Query) (*places.FeatureCollection, error)
}

// Assembler turns raw pools into the bounded display set.
type Assembler interface {
	Assemble(attractions, food []places.Feature) places.Results
}

// Submission is one search form post.
type Submission struct {
	Name        string
	Destination string
	Interests   []string
	Food        []string
}

// Result is what the results page renders.
type Result struct {
	DisplayName string
	Destination places.Destination
	Preference  *preferences.Preference
	Attractions []places.Place
	Food        []places.Place
	Notices     []string
}

// Degraded reports whether a pool was replaced by an empty one.
func (r *Result) Degraded() bool { return len(r.Notices) > 0 }

type Service struct {
	prefs     *preferences.Service
	builder   *places.Builder
	fetcher   Fetcher
	assembler Assembler
}

func NewService(prefs *preferences.Service, builder *places.Builder, fetcher Fetcher, assembler Assembler) *Service {
	return &Service{prefs: prefs, builder: builder, fetcher: fetcher, assembler: assembler}
}

// Plan stores the submission as the user's preference and assembles results for it.
// Nothing is persisted and no lookup is made when the submission is invalid
// or names an unknown destination.
func (s *Service) Plan(ctx context.Context, userID uint, sub Submission) (*Result, error) {
	pref := &preferences.Preference{
		UserID:      userID,
		Destination: strings.TrimSpace(sub.Destination),
		Interests:   preferences.UniqueTags(sub.Interests),
		Food:        preferences.UniqueTags(sub.Food),
	}
	if err := preferences.Validate(pref); err != nil {
		metrics.Searches.WithLabelValues("invalid").Inc()
		return nil, err
	}
	qs, err := s.builder.Build(pref.Destination, pref.Interests, pref.Food)
	if err != nil {
		metrics.Searches.WithLabelValues("invalid").Inc()
		return nil, err
	}
	pref.Destination = qs.Destination.Name
	if err := s.prefs.Save(ctx, pref); err != nil {
		metrics.Searches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("save preference: %w", err)
	}

	var attractions, food []places.Feature
	var attrErr, foodErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		attractions, attrErr = s.lookup(gctx, qs.Attractions)
		return nil
	})
	g.Go(func() error {
		food, foodErr = s.lookup(gctx, qs.Food)
		return nil
	})
	_ = g.Wait()

	res := &Result{
		DisplayName: sub.Name,
		Destination: qs.Destination,
		Preference:  pref,
	}
	if attrErr != nil {
		logger.Warnf("attractions lookup for %s degraded: %v", qs.Destination.Name, attrErr)
		res.Notices = append(res.Notices, "Attractions are unavailable right now; showing what we could find.")
	}
	if foodErr != nil {
		logger.Warnf("food lookup for %s degraded: %v", qs.Destination.Name, foodErr)
		res.Notices = append(res.Notices, "Food places are unavailable right now; showing what we could find.")
	}

	assembled := s.assembler.Assemble(attractions, food)
	res.Attractions = assembled.Attractions
	res.Food = assembled.Food

	if res.Degraded() {
		metrics.Searches.WithLabelValues("degraded").Inc()
	} else {
		metrics.Searches.WithLabelValues("ok").Inc()
	}
	return res, nil
}

// lookup returns an empty pool for provider failures; other errors are unexpected.
func (s *Service) lookup(ctx context.Context, q places.Query) ([]places.Feature, error) {
	fc, err := s.fetcher.Fetch(ctx, q)
	if err != nil {
		var ese *places.ExternalServiceError
		if !errors.As(err, &ese) {
			err = &places.ExternalServiceError{Op: "fetch", Err: err}
		}
		return nil, err
	}
	if fc == nil {
		return nil, nil
	}
	return fc.Features, nil
}
