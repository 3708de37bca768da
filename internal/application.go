package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/bot"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/config"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/repository"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/repository/storage"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/ultimate-tictactoe/transport/rest"
	"github.com/rocketscienceinc/ultimate-tictactoe/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// botSeat is a seat that owns a bot process or in-process bot.
type botSeat interface {
	usecase.Seat

	Close() error
}

// RunApp - runs one match between the configured bots and serves its history.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	matchRepo := repository.NewMatchRepository(redisStorage.Connection, conf.Redis.MatchTTL)
	resultRepo := repository.NewResultRepository(sqliteStorage.Connection)

	hub := websocket.New(logger)
	history := usecase.NewHistoryUseCase(matchRepo, resultRepo)
	runner := usecase.NewMatchRunner(logger, matchRepo, resultRepo, hub, usecase.MatchSettings{
		Timebank:    conf.Match.Timebank,
		TimePerMove: conf.Match.TimePerMove,
		MaxRounds:   conf.Match.MaxRounds,
	})

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.New(logger, history).Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if wsErr := hub.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	seats, err := startSeats(ctx, logger, conf)
	if err != nil {
		return err
	}

	match, err := runner.Run(ctx, seats)
	closeSeats(log, seats)

	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	log.Info("Match stored", "match", match.ID, "outcome", match.Outcome.Kind, "winner", match.Outcome.WinnerName())

	if !conf.Match.KeepServing {
		return nil
	}

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// startSeats - starts the configured bots as seats 1 and 2.
func startSeats(ctx context.Context, logger *slog.Logger, conf *config.Config) ([]usecase.Seat, error) {
	seats := make([]usecase.Seat, 0, len(conf.Bots))

	for i, botConf := range conf.Bots {
		id := i + 1

		if botConf.Command == bot.RandomCommand {
			seats = append(seats, bot.NewRandom(id, botConf.Name, int64(id)))
			continue
		}

		player, err := bot.Start(ctx, logger, id, botConf.Name, botConf.Command, conf.Match.TimePerMove)
		if err != nil {
			closeSeats(logger, seats)
			return nil, fmt.Errorf("could not start bot %s: %w", botConf.Name, err)
		}

		seats = append(seats, player)
	}

	return seats, nil
}

func closeSeats(logger *slog.Logger, seats []usecase.Seat) {
	for _, seat := range seats {
		closer, ok := seat.(botSeat)
		if !ok {
			continue
		}

		if err := closer.Close(); err != nil {
			logger.Warn("could not close bot", "bot", seat.Name(), "error", err)
		}
	}
}
