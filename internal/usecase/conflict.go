package usecase

import (
	"time"

	"movietix/internal/data/entity"

	"github.com/google/uuid"
)

// Pure seat-conflict decisions. These run as a pre-flight check before the
// transactional commit; the repository repeats the same checks inside the
// transaction, so a stale answer here costs a round trip, never a double
// sell.

// ConflictingSeats returns the requested seats already present in the
// booked set, preserving request order.
func ConflictingSeats(booked []string, requested []string) []string {
	if len(booked) == 0 || len(requested) == 0 {
		return nil
	}

	bookedSet := make(map[string]struct{}, len(booked))
	for _, seat := range booked {
		bookedSet[seat] = struct{}{}
	}

	var conflicts []string
	for _, seat := range requested {
		if _, taken := bookedSet[seat]; taken {
			conflicts = append(conflicts, seat)
		}
	}
	return conflicts
}

// SeatsHeldByOthers returns the requested seats covered by an unexpired
// hold belonging to a different user. The requester's own holds do not
// block: they are promoted into booked seats at commit.
func SeatsHeldByOthers(holds []*entity.SeatHold, requested []string, userID uuid.UUID, now time.Time) []string {
	if len(holds) == 0 || len(requested) == 0 {
		return nil
	}

	foreign := make(map[string]struct{}, len(holds))
	for _, hold := range holds {
		if hold.UserID != userID && hold.Active(now) {
			foreign[hold.SeatID] = struct{}{}
		}
	}

	var blocked []string
	for _, seat := range requested {
		if _, held := foreign[seat]; held {
			blocked = append(blocked, seat)
		}
	}
	return blocked
}
