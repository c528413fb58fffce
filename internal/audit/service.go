package audit

import (
	"context"
	"math"
	"sort"
	"time"

	"reception-backend/internal/documents"
	"reception-backend/internal/review"
)

// ReviewerStats aggregates one reviewer's trail.
type ReviewerStats struct {
	ReviewerID         string  `json:"reviewerId"`
	Claims             int     `json:"claims"`
	Accepts            int     `json:"accepts"`
	Overrides          int     `json:"overrides"`
	Rejects            int     `json:"rejects"`
	AvgDurationSeconds float64 `json:"avgDurationSeconds"`
	OverrideRate       float64 `json:"overrideRate"`
}

// Stats is the admin KPI report.
type Stats struct {
	TotalDocuments int                      `json:"totalDocuments"`
	StatusCounts   map[documents.Status]int `json:"statusCounts"`
	ResolutionRate float64                  `json:"resolutionRate"`
	OverrideRate   float64                  `json:"overrideRate"`
	Reviewers      []ReviewerStats          `json:"reviewers"`
}

// Service computes KPIs from the audit trail and document counts. The math
// happens in Go so the Postgres and in-memory repos stay interchangeable.
type Service struct {
	Docs    documents.Repo
	Actions review.ActionsRepo
}

func NewService(docs documents.Repo, actions review.ActionsRepo) *Service {
	return &Service{Docs: docs, Actions: actions}
}

// Stats builds the report over actions created at or after since. A zero
// since covers the full history.
func (s *Service) Stats(ctx context.Context, since time.Time) (Stats, error) {
	counts, err := s.Docs.CountByStatus(ctx)
	if err != nil {
		return Stats{}, err
	}
	actions, err := s.Actions.ListSince(ctx, since)
	if err != nil {
		return Stats{}, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	type acc struct {
		stats         ReviewerStats
		durationSum   int64
		durationCount int
	}
	perReviewer := map[string]*acc{}
	get := func(id string) *acc {
		a, ok := perReviewer[id]
		if !ok {
			a = &acc{stats: ReviewerStats{ReviewerID: id}}
			perReviewer[id] = a
		}
		return a
	}

	totalTerminal := 0
	totalOverrides := 0
	for _, action := range actions {
		a := get(action.ReviewerID)
		switch action.Action {
		case review.ActionClaim:
			a.stats.Claims++
			continue
		case review.ActionAccept:
			a.stats.Accepts++
		case review.ActionOverride:
			a.stats.Overrides++
			totalOverrides++
		case review.ActionReject:
			a.stats.Rejects++
		default:
			continue
		}
		totalTerminal++
		if action.DurationSeconds != nil {
			a.durationSum += *action.DurationSeconds
			a.durationCount++
		}
	}

	reviewers := make([]ReviewerStats, 0, len(perReviewer))
	for _, a := range perReviewer {
		terminal := a.stats.Accepts + a.stats.Overrides + a.stats.Rejects
		if a.durationCount > 0 {
			a.stats.AvgDurationSeconds = round2(float64(a.durationSum) / float64(a.durationCount))
		}
		if terminal > 0 {
			a.stats.OverrideRate = round2(float64(a.stats.Overrides) / float64(terminal))
		}
		reviewers = append(reviewers, a.stats)
	}
	sort.Slice(reviewers, func(i, j int) bool { return reviewers[i].ReviewerID < reviewers[j].ReviewerID })

	out := Stats{
		TotalDocuments: total,
		StatusCounts:   counts,
		Reviewers:      reviewers,
	}
	if total > 0 {
		out.ResolutionRate = round2(float64(counts[documents.StatusResolved]) / float64(total))
	}
	if totalTerminal > 0 {
		out.OverrideRate = round2(float64(totalOverrides) / float64(totalTerminal))
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
