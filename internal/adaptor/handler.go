package adaptor

import (
	"github.com/marczlle/letterboxd-v2/internal/usecase"
	"github.com/marczlle/letterboxd-v2/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Reservation *ReservationHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Reservation: NewReservationHandler(service.Reservation, config, log),
	}
}
