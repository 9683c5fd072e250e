package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rareminds-eym/skillpassport-sub002/internal/store"
	"golang.org/x/sync/errgroup"
)

// ErrProfileUnavailable means the student record itself is missing;
// the request cannot proceed without it.
var ErrProfileUnavailable = errors.New("student profile unavailable")

const opportunityFetchLimit = 50

// AggregatedContext is the read-only snapshot handed to the prompt
// assembler. Optional sources degrade to explicit markers instead of
// failing the request; it is built fresh per request and never cached.
type AggregatedContext struct {
	Profile store.Student

	HasAssessment bool
	Assessment    *store.AssessmentResult

	HasProgress bool
	Progress    *store.CareerProgress

	Opportunities []store.Opportunity
}

// aggregateContext fans out the store reads concurrently and joins
// them under a bounded-wait timeout. The profile read is the only
// hard dependency; a slow or missing assessment/progress/opportunity
// read degrades to its empty marker.
func (s *Service) aggregateContext(ctx context.Context, studentID string, intent Intent) (*AggregatedContext, error) {
	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	agg := &AggregatedContext{}

	g, gctx := errgroup.WithContext(fctx)

	g.Go(func() error {
		profile, err := s.store.GetProfile(gctx, studentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProfileUnavailable
			}
			return fmt.Errorf("load profile: %w", err)
		}
		agg.Profile = *profile
		return nil
	})

	g.Go(func() error {
		a, err := s.store.GetAssessment(gctx, studentID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				s.log.Warn("assessment fetch degraded", "student_id", studentID, "err", err)
			}
			return nil
		}
		agg.Assessment = a
		agg.HasAssessment = true
		return nil
	})

	g.Go(func() error {
		p, err := s.store.GetProgress(gctx, studentID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				s.log.Warn("progress fetch degraded", "student_id", studentID, "err", err)
			}
			return nil
		}
		agg.Progress = p
		agg.HasProgress = true
		return nil
	})

	if intent.JobRelated() {
		g.Go(func() error {
			opps, err := s.store.ListOpportunities(gctx, opportunityFetchLimit)
			if err != nil {
				s.log.Warn("opportunity fetch degraded", "student_id", studentID, "err", err)
				return nil
			}
			agg.Opportunities = opps
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return agg, nil
}
