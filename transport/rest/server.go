package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/entity"
)

const (
	handlerTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type historyUseCase interface {
	GetMatch(ctx context.Context, id string) (*entity.Match, error)
	GetBoardAt(ctx context.Context, id string, moves int) (*entity.Board, error)
	ListResults(ctx context.Context, limit int) ([]entity.Result, error)
}

// Server serves the match history API.
type Server struct {
	logger  *slog.Logger
	router  *chi.Mux
	history historyUseCase
}

func New(logger *slog.Logger, history historyUseCase) *Server {
	server := &Server{
		logger:  logger.With("component", "rest"),
		router:  chi.NewRouter(),
		history: history,
	}

	server.router.Use(middleware.RequestID)
	server.router.Use(middleware.Recoverer)
	server.router.Use(middleware.Timeout(handlerTimeout))

	server.router.Get("/ping", server.handlePing)
	server.router.Get("/matches/{id}", server.handleGetMatch)
	server.router.Get("/results", server.handleListResults)

	return server
}

func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	that.router.ServeHTTP(w, r)
}

// Start - serves until ctx is done, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
