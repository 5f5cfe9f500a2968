package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateClientID creates the per-connection client identifier in the
// USR-XXXXXX shape the seat-selector UI displays. IDs are assigned only at
// connection establishment, by the gateway.
func GenerateClientID() string {
	token := strings.ToUpper(uuid.New().String()[:6])
	return "USR-" + token
}

// GenerateReservationCode creates a unique archive code with timestamp.
func GenerateReservationCode() string {
	now := time.Now()

	// Format: RESV-YYYYMMDD-HHMMSS-RANDOM
	datePart := now.Format("20060102")
	timePart := now.Format("150405")
	randomPart := fmt.Sprintf("%04d", rand.Intn(10000))

	return fmt.Sprintf("RESV-%s-%s-%s", datePart, timePart, randomPart)
}
