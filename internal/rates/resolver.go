// Package rates resolves green-fee rates and computes taxed fee amounts.
package rates

import (
	"context"
	"errors"
	"fmt"

	"github.com/linksclub/teesheet-service/internal/cache"
	"github.com/linksclub/teesheet-service/internal/models"
	"github.com/linksclub/teesheet-service/internal/repository"
	"github.com/linksclub/teesheet-service/internal/schedule"
)

// ErrNoRateConfigured means the rate table has no row at all for the
// request, not even a catch-all. Callers must treat it as a hard stop;
// it indicates missing setup data, never "free".
var ErrNoRateConfigured = errors.New("no green fee rate configured")

// ResolvedRate is the single best match for a lookup.
type ResolvedRate struct {
	RateID   uint
	Amount   float64
	DayType  models.DayType
	TimeType models.TimeType
}

type Resolver struct {
	rateRepo repository.RateRepository
	holidays schedule.HolidayCalendar
	// rateCache avoids re-reading the rate table on every fee computation;
	// entries are keyed by course and invalidated on admin rate changes.
	rateCache *cache.Cache[[]models.GreenFeeRate]
}

func NewResolver(rateRepo repository.RateRepository, holidays schedule.HolidayCalendar, rateCache *cache.Cache[[]models.GreenFeeRate]) *Resolver {
	return &Resolver{
		rateRepo:  rateRepo,
		holidays:  holidays,
		rateCache: rateCache,
	}
}

// Resolve picks the single most specific active rate for the tuple.
// Specificity: exact membership type beats the nil/guest default, exact day
// type beats ANY, exact time type beats ALL_DAY. Ties break on newest
// effective-from, then lowest id, so repeated calls are deterministic.
func (r *Resolver) Resolve(ctx context.Context, cfg schedule.ResolvedConfig, courseID uint, date string, teeOff string, membershipType *string) (*ResolvedRate, error) {
	day, err := schedule.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	dayType := schedule.ClassifyDay(day, r.holidays)
	timeType, err := schedule.ClassifyTime(teeOff, cfg)
	if err != nil {
		return nil, err
	}

	table, err := r.loadRates(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var best *models.GreenFeeRate
	bestScore := -1
	for i := range table {
		rate := &table[i]
		if !rate.EffectiveOn(day) {
			continue
		}
		score, ok := matchScore(rate, dayType, timeType, membershipType)
		if !ok {
			continue
		}
		if score > bestScore || (score == bestScore && better(rate, best)) {
			best = rate
			bestScore = score
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: course %d %s %s", ErrNoRateConfigured, courseID, date, teeOff)
	}

	return &ResolvedRate{
		RateID:   best.ID,
		Amount:   best.Rate,
		DayType:  dayType,
		TimeType: timeType,
	}, nil
}

// Invalidate drops the cached rate table for a course (admin rate edits).
func (r *Resolver) Invalidate(courseID uint) {
	if r.rateCache != nil {
		r.rateCache.Invalidate(rateCacheKey(courseID))
	}
}

func (r *Resolver) loadRates(ctx context.Context, courseID uint) ([]models.GreenFeeRate, error) {
	key := rateCacheKey(courseID)
	if r.rateCache != nil {
		if cached, ok := r.rateCache.Get(key); ok {
			return cached, nil
		}
	}
	table, err := r.rateRepo.FindActiveByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if r.rateCache != nil {
		r.rateCache.Set(key, table)
	}
	return table, nil
}

func rateCacheKey(courseID uint) string {
	return fmt.Sprintf("rates:%d", courseID)
}

// matchScore reports whether the rate applies and how specific it is.
// Membership match is worth more than day type, which is worth more than
// time type, so a member-specific ALL_DAY rate beats a guest peak rate.
func matchScore(rate *models.GreenFeeRate, dayType models.DayType, timeType models.TimeType, membershipType *string) (int, bool) {
	score := 0

	switch {
	case rate.MembershipType == nil:
		// default row, applies to anyone
	case membershipType != nil && *rate.MembershipType == *membershipType:
		score += 4
	default:
		return 0, false
	}

	switch rate.DayType {
	case models.DayAny:
	case dayType:
		score += 2
	default:
		return 0, false
	}

	switch rate.TimeType {
	case models.TimeAllDay:
	case timeType:
		score += 1
	default:
		return 0, false
	}

	return score, true
}

// better breaks exact-score ties: newest effective-from wins, then lowest id.
func better(candidate, current *models.GreenFeeRate) bool {
	if current == nil {
		return true
	}
	switch {
	case candidate.EffectiveFrom != nil && current.EffectiveFrom == nil:
		return true
	case candidate.EffectiveFrom == nil && current.EffectiveFrom != nil:
		return false
	case candidate.EffectiveFrom != nil && current.EffectiveFrom != nil &&
		!candidate.EffectiveFrom.Equal(*current.EffectiveFrom):
		return candidate.EffectiveFrom.After(*current.EffectiveFrom)
	}
	return candidate.ID < current.ID
}
