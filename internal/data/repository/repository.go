package repository

import (
	"github.com/marczlle/letterboxd-v2/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Reservation ReservationRepository
}

// NewRepository wires all repositories. A nil db selects the no-op archive
// so the coordinator can run without Postgres.
func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	var reservation ReservationRepository
	if db != nil {
		reservation = NewReservationRepository(db, log)
	} else {
		reservation = NewNoopReservationRepository(log)
	}

	return &Repository{
		Reservation: reservation,
	}
}
