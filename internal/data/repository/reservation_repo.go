package repository

import (
	"context"
	"fmt"

	"github.com/marczlle/letterboxd-v2/internal/data/entity"
	"github.com/marczlle/letterboxd-v2/pkg/database"

	"go.uber.org/zap"
)

type ReservationRepository interface {
	CreateBatch(ctx context.Context, reservations []*entity.Reservation) error
}

type reservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReservationRepository(db database.PgxIface, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

func (r *reservationRepository) CreateBatch(ctx context.Context, reservations []*entity.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}

	// Build batch insert
	query := `INSERT INTO seat_reservations (id, code, session_id, seat_id, client_id, payer_name, payer_document, payer_contact, created_at) VALUES `
	args := []interface{}{}

	for i, res := range reservations {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			i*9+1, i*9+2, i*9+3, i*9+4, i*9+5, i*9+6, i*9+7, i*9+8, i*9+9)

		args = append(args,
			res.ID,
			res.Code,
			res.SessionID,
			res.SeatID,
			res.ClientID,
			res.PayerName,
			res.PayerDocument,
			res.PayerContact,
			res.CreatedAt,
		)
	}

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to archive reservations",
			zap.Error(err),
			zap.Int("count", len(reservations)),
		)
		return fmt.Errorf("failed to archive reservations: %w", err)
	}

	return nil
}

// noopReservationRepository discards archive writes. Used when no database
// is configured; the in-memory seat state is still authoritative.
type noopReservationRepository struct {
	log *zap.Logger
}

func NewNoopReservationRepository(log *zap.Logger) ReservationRepository {
	return &noopReservationRepository{
		log: log.With(zap.String("repository", "reservation-noop")),
	}
}

func (r *noopReservationRepository) CreateBatch(_ context.Context, reservations []*entity.Reservation) error {
	if len(reservations) > 0 {
		r.log.Debug("Archive disabled, dropping reservations",
			zap.Int("count", len(reservations)),
		)
	}
	return nil
}
