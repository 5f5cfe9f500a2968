package usecase

import (
	"github.com/marczlle/letterboxd-v2/internal/data/repository"

	"go.uber.org/zap"
)

type Service struct {
	Reservation ReservationService
}

func NewService(hub *Hub, repo *repository.Repository, log *zap.Logger) *Service {
	return &Service{
		Reservation: NewReservationService(hub, repo, log),
	}
}
