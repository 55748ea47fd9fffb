package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/GuiNunes77/The-Room/internal/domain"
)

// OverlapPolicy selects the bounds of the interval-intersection test used to
// decide whether two stays on the same room collide.
type OverlapPolicy int

const (
	// OverlapInclusive treats both interval ends as booked, so a stay ending
	// on a given day blocks a new stay beginning that day. This leaves a
	// cleaning buffer between back-to-back stays and is the default policy.
	OverlapInclusive OverlapPolicy = iota

	// OverlapExclusive allows same-day turnover: a checkout day may also be a
	// new stay's check-in day.
	OverlapExclusive
)

// AvailabilityChecker decides whether a room is free for a date interval.
type AvailabilityChecker struct {
	repo   Repository
	policy OverlapPolicy
}

// NewAvailabilityChecker creates an AvailabilityChecker with the given policy.
func NewAvailabilityChecker(repo Repository, policy OverlapPolicy) *AvailabilityChecker {
	return &AvailabilityChecker{repo: repo, policy: policy}
}

// IsAvailable reports whether no active booking on the room overlaps the
// requested interval. A storage failure is returned as an error, never as an
// availability verdict.
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	if roomID == uuid.Nil {
		return false, domain.NewValidationError("room ID is required")
	}
	if !checkOut.After(checkIn) {
		return false, domain.NewValidationError("check-out must be after check-in")
	}

	count, err := c.repo.CountOverlappingActive(ctx, roomID, checkIn, checkOut, c.policy)
	if err != nil {
		return false, fmt.Errorf("availability check failed: %w", err)
	}
	return count == 0, nil
}

// Policy returns the overlap policy in effect.
func (c *AvailabilityChecker) Policy() OverlapPolicy {
	return c.policy
}
