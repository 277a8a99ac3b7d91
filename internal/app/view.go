package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/eventpulse/internal/domain/filter"
	"github.com/okian/eventpulse/internal/domain/model"
	"github.com/okian/eventpulse/internal/domain/personality"
	"github.com/okian/eventpulse/internal/domain/pipeline"
	"github.com/okian/eventpulse/internal/domain/scoring"
	"github.com/okian/eventpulse/internal/domain/types"
	"github.com/okian/eventpulse/pkg/logger"
	"github.com/okian/eventpulse/pkg/metrics"
)

// View filters, sorts and groups the current events for the query and, when
// the user has a profile and no manual filter is set, adds recommendations.
func (s *Service) View(ctx context.Context, q types.ViewQuery) (types.View, error) {
	p, err := s.Profile(ctx, q.UserID)
	if err != nil {
		return types.View{}, err
	}
	events := s.current().events
	vm := s.compute(ctx, events, p, q.Location, q.Criteria, s.now())

	if scoring.Eligible(p, q.Criteria) {
		recs, err := s.recommend(ctx, q.UserID, events, p, q.Location, vm.GeneratedAt, q.Limit)
		if err != nil {
			return types.View{}, err
		}
		vm.Recommendations = recs
	}
	return types.FromView(&vm), nil
}

func (s *Service) compute(ctx context.Context, events []model.Event, p *personality.Profile, loc *model.Coordinate, c filter.Criteria, now time.Time) model.ViewModel {
	start := time.Now()
	vm := pipeline.ComputeView(events, p, loc, c, now)
	metrics.RecordViewCompute(float64(time.Since(start).Microseconds())/1000, len(events))
	if vm.Fallback {
		metrics.RecordPersonalityFallback()
		s.logger.Debug(ctx, "personality filter matched nothing, showing all events",
			logger.String("mbti", p.Code()))
	}
	return vm
}

func (s *Service) recommend(ctx context.Context, userID string, events []model.Event, p *personality.Profile, loc *model.Coordinate, now time.Time, limit int) ([]model.ScoredEvent, error) {
	recs, err := s.scorer(userID).Recommend(ctx, events, p, loc, now, limit)
	if err != nil {
		return nil, fmt.Errorf("recommendations for %s: %w", userID, err)
	}
	return recs, nil
}

// Quiz returns the personality quiz statements in answer order.
func (s *Service) Quiz() []personality.Statement {
	return personality.Statements()
}
