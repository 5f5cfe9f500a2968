package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/marczlle/letterboxd-v2/internal/data/entity"
	"github.com/marczlle/letterboxd-v2/internal/data/repository"
	"github.com/marczlle/letterboxd-v2/internal/dto/request"
	"github.com/marczlle/letterboxd-v2/internal/dto/response"
	"github.com/marczlle/letterboxd-v2/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReservationService interface {
	// Connection lifecycle, driven by the gateway
	Join(sessionID string, sub Subscriber) (*response.SeatSnapshot, error)
	Leave(sessionID, clientID string)

	// Seat actions
	LockSeat(ctx context.Context, sessionID, seatID, clientID string) error
	ReleaseSeat(ctx context.Context, sessionID, seatID, clientID string) error
	ConfirmPayment(ctx context.Context, req *request.ConfirmPaymentRequest) (*response.PaymentResult, error)
}

type reservationService struct {
	hub  *Hub
	repo *repository.Repository
	log  *zap.Logger
}

func NewReservationService(hub *Hub, repo *repository.Repository, log *zap.Logger) ReservationService {
	return &reservationService{
		hub:  hub,
		repo: repo,
		log:  log.With(zap.String("service", "reservation")),
	}
}

func (s *reservationService) Join(sessionID string, sub Subscriber) (*response.SeatSnapshot, error) {
	if sessionID == "" {
		return nil, ErrUnknownSession
	}
	sess := s.hub.GetOrCreate(sessionID)
	return sess.Join(sub), nil
}

func (s *reservationService) Leave(sessionID, clientID string) {
	if sess, ok := s.hub.Get(sessionID); ok {
		sess.Leave(clientID)
	}
}

func (s *reservationService) LockSeat(_ context.Context, sessionID, seatID, clientID string) error {
	sess, ok := s.hub.Get(sessionID)
	if !ok {
		return ErrUnknownSession
	}
	return sess.Lock(seatID, clientID)
}

func (s *reservationService) ReleaseSeat(_ context.Context, sessionID, seatID, clientID string) error {
	sess, ok := s.hub.Get(sessionID)
	if !ok {
		return ErrUnknownSession
	}
	return sess.Release(seatID, clientID)
}

func (s *reservationService) ConfirmPayment(ctx context.Context, req *request.ConfirmPaymentRequest) (*response.PaymentResult, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Confirm payment validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	sess, ok := s.hub.Get(req.Session)
	if !ok {
		return nil, ErrUnknownSession
	}

	confirmed, failed := sess.Confirm(req.ClientID, req.Seats)

	// Archive confirmed seats, best-effort. The in-memory state is already
	// committed and broadcast; an archive failure must not fail the sale.
	if len(confirmed) > 0 {
		s.archive(ctx, req, confirmed)
	}

	result := &response.PaymentResult{
		Type:           response.TypeConfirmationPayment,
		ConfirmedSeats: confirmed,
		FailedSeats:    failed,
	}
	switch {
	case len(failed) == 0:
		result.Status = response.StatusOK
		result.Message = fmt.Sprintf("All %d seats confirmed", len(confirmed))
	case len(confirmed) == 0:
		result.Status = response.StatusError
		result.Message = "No claimed seat could be confirmed"
	default:
		result.Status = response.StatusPartial
		result.Message = fmt.Sprintf("%d seats confirmed, %d failed", len(confirmed), len(failed))
	}

	return result, nil
}

func (s *reservationService) archive(ctx context.Context, req *request.ConfirmPaymentRequest, confirmed []string) {
	now := time.Now()
	code := utils.GenerateReservationCode()

	records := make([]*entity.Reservation, len(confirmed))
	for i, seatID := range confirmed {
		records[i] = &entity.Reservation{
			ID:            uuid.New(),
			Code:          code,
			SessionID:     req.Session,
			SeatID:        seatID,
			ClientID:      req.ClientID,
			PayerName:     req.Payer.Name,
			PayerDocument: req.Payer.Document,
			PayerContact:  req.Payer.Contact,
			CreatedAt:     now,
		}
	}

	if err := s.repo.Reservation.CreateBatch(ctx, records); err != nil {
		s.log.Error("Failed to archive confirmed reservations",
			zap.Error(err),
			zap.String("session", req.Session),
			zap.Strings("seats", confirmed),
		)
		return
	}

	s.log.Info("Reservations archived",
		zap.String("code", code),
		zap.String("session", req.Session),
		zap.Int("seat_count", len(confirmed)),
	)
}
