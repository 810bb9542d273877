package wire

import (
	"net/http"

	"movietix/internal/adaptor"
	"movietix/internal/data/repository"
	"movietix/internal/usecase"
	"movietix/pkg/middleware"
	"movietix/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring assembles services, handlers and routes on top of the
// repositories.
func Wiring(repo *repository.Repository, cache usecase.SeatCache, notifier usecase.Notifier, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, cache, notifier, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireUser(r, handler.User, repo, logger)
	wireShowtime(r, handler.Showtime, repo, logger)
	wireBooking(r, handler.Booking, repo, logger)
	wireTicket(r, handler.Ticket, repo, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
