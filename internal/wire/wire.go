// internal/wire/wire.go
package wire

import (
	"net/http"
	"time"

	"github.com/marczlle/letterboxd-v2/internal/adaptor"
	"github.com/marczlle/letterboxd-v2/internal/data/entity"
	"github.com/marczlle/letterboxd-v2/internal/data/repository"
	"github.com/marczlle/letterboxd-v2/internal/usecase"
	"github.com/marczlle/letterboxd-v2/pkg/middleware"
	"github.com/marczlle/letterboxd-v2/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired dependencies the entry point needs.
type App struct {
	Router *chi.Mux
	Hub    *usecase.Hub
}

// Wiring initializes all dependencies.
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	layout := entity.NewLayout(
		config.Layout.Rows,
		config.Layout.SeatsPerRow,
		config.Layout.WheelchairSeats,
	)

	hub := usecase.NewHub(
		layout,
		time.Duration(config.Reservation.HoldTTLMinutes)*time.Minute,
		time.Duration(config.Reservation.SessionIdleMinutes)*time.Minute,
		logger,
	)

	service := usecase.NewService(hub, repo, logger)
	handler := adaptor.NewHandler(service, config, logger)

	router := setupRouter(handler, logger)

	return &App{
		Router: router,
		Hub:    hub,
	}
}

// setupRouter configures the Chi router.
func setupRouter(handler *adaptor.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	// Reservation coordinator websocket
	r.Get("/ws/reserva", handler.Reservation.Serve)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseSuccess(w, "OK", nil)
	})

	return r
}
