package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/tictactoe"
)

const (
	SettingTimebank    = "timebank"
	SettingTimePerMove = "time_per_move"
	SettingPlayerNames = "player_names"
	SettingYourBot     = "your_bot"
	SettingYourBotID   = "your_botid"
)

// Seat is a bot seat that also takes settings before the first round.
type Seat interface {
	tictactoe.Seat

	SendSetting(ctx context.Context, key string, value any) error
}

type MatchRunner interface {
	Run(ctx context.Context, seats []Seat) (*entity.Match, error)
}

type matchRepo interface {
	CreateOrUpdate(ctx context.Context, match *entity.Match) error
}

type resultRepo interface {
	Save(ctx context.Context, result *entity.Result) error
}

type movePublisher interface {
	Publish(matchID string, record entity.MoveRecord)
}

type MatchSettings struct {
	Timebank    time.Duration
	TimePerMove time.Duration
	// MaxRounds stops a match that never ends. Zero means no limit.
	MaxRounds int
}

type matchRunner struct {
	logger *slog.Logger

	matchRepo  matchRepo
	resultRepo resultRepo
	publisher  movePublisher

	settings MatchSettings
	now      func() time.Time
}

func NewMatchRunner(
	logger *slog.Logger,
	matchRepo matchRepo,
	resultRepo resultRepo,
	publisher movePublisher,
	settings MatchSettings,
) MatchRunner {
	return &matchRunner{
		logger:     logger.With("component", "match_runner"),
		matchRepo:  matchRepo,
		resultRepo: resultRepo,
		publisher:  publisher,
		settings:   settings,
		now:        time.Now,
	}
}

// Run - plays one match to the end, then stores the match and its result.
func (that *matchRunner) Run(ctx context.Context, seats []Seat) (*entity.Match, error) {
	processorSeats := make([]tictactoe.Seat, 0, len(seats))
	for _, seat := range seats {
		processorSeats = append(processorSeats, seat)
	}

	processor, err := tictactoe.NewProcessor(that.logger, processorSeats, entity.NewBoard())
	if err != nil {
		return nil, fmt.Errorf("could not create processor: %w", err)
	}

	match := &entity.Match{
		ID:        uuid.NewString(),
		Players:   processor.Players(),
		StartedAt: that.now(),
	}

	log := that.logger.With("method", "Run", "match", match.ID)
	log.Info("match started", "players", match.Players)

	if err = that.sendSettings(ctx, seats, match.Players); err != nil {
		return nil, err
	}

	published := 0
	for round := 1; !processor.IsGameOver(); round++ {
		if that.settings.MaxRounds > 0 && round > that.settings.MaxRounds {
			log.Warn("round limit reached", "limit", that.settings.MaxRounds)
			break
		}

		if err = ctx.Err(); err != nil {
			return nil, fmt.Errorf("match %s interrupted: %w", match.ID, err)
		}

		processor.PlayRound(ctx, round)

		records := processor.MoveRecords()
		for _, record := range records[published:] {
			that.publisher.Publish(match.ID, record)
		}
		published = len(records)
	}

	board := processor.Board()
	match.Rounds = processor.RoundNumber()
	match.Outcome = processor.Outcome()
	match.Field = board.String()
	match.Macroboard = board.MacroboardString()
	match.Moves = processor.MoveRecords()
	match.FinishedAt = that.now()

	log.Info("match finished", "outcome", match.Outcome.Kind, "winner", match.Outcome.WinnerName(), "rounds", match.Rounds)

	if err = that.matchRepo.CreateOrUpdate(ctx, match); err != nil {
		return match, fmt.Errorf("failed to save match: %w", err)
	}

	if err = that.resultRepo.Save(ctx, entity.NewResult(match)); err != nil {
		return match, fmt.Errorf("failed to save result: %w", err)
	}

	return match, nil
}

func (that *matchRunner) sendSettings(ctx context.Context, seats []Seat, players []entity.Player) error {
	names := make([]string, 0, len(players))
	for _, player := range players {
		names = append(names, player.Name)
	}

	for _, seat := range seats {
		settings := []struct {
			key   string
			value any
		}{
			{SettingTimebank, that.settings.Timebank.Milliseconds()},
			{SettingTimePerMove, that.settings.TimePerMove.Milliseconds()},
			{SettingPlayerNames, strings.Join(names, ",")},
			{SettingYourBot, seat.Name()},
			{SettingYourBotID, seat.ID()},
		}

		for _, setting := range settings {
			if err := seat.SendSetting(ctx, setting.key, setting.value); err != nil {
				return fmt.Errorf("failed to send setting %s to %s: %w", setting.key, seat.Name(), err)
			}
		}
	}

	return nil
}
