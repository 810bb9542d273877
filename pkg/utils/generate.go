package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mrand "math/rand"
	"time"

	"github.com/google/uuid"
)

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

// GenerateBookingID creates the human-shareable booking identifier.
// Timestamp plus a random suffix makes collisions negligible; the bookings
// table still carries a unique index as the backstop.
//
// Format: MTX-YYYYMMDD-HHMMSS-RANDOM
func GenerateBookingID() string {
	now := time.Now()
	randomPart := fmt.Sprintf("%06d", mrand.Intn(1000000))

	return fmt.Sprintf("MTX-%s-%s-%s", now.Format("20060102"), now.Format("150405"), randomPart)
}

// GenerateTicketID creates the per-seat ticket identifier.
// Format: TKT-YYYYMMDD-RANDOM
func GenerateTicketID() string {
	randomPart := fmt.Sprintf("%08d", mrand.Intn(100000000))
	return fmt.Sprintf("TKT-%s-%s", time.Now().Format("20060102"), randomPart)
}

// GenerateVerificationCode returns a hex string of n random bytes for
// ticket validation at the venue.
func GenerateVerificationCode(n int) (string, error) {
	if n <= 0 {
		n = 16
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
