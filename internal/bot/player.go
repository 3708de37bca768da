package bot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

const linesBuffer = 16

var (
	ErrTimeout = errors.New("bot did not answer in time")
	ErrClosed  = errors.New("bot output is closed")
)

// Player is a seat played by an external bot speaking the line protocol:
// "settings <key> <value>", "update game <key> <value>" and "action <name> <time ms>" answered by one line.
type Player struct {
	logger *slog.Logger

	id      int
	name    string
	timeout time.Duration

	writer io.Writer
	lines  chan string
	closer func() error

	warnings []string
}

// New - creates a player reading answers from reader and writing commands to writer.
func New(logger *slog.Logger, id int, name string, reader io.Reader, writer io.Writer, timeout time.Duration) *Player {
	player := &Player{
		logger:  logger.With("component", "bot", "bot", name),
		id:      id,
		name:    name,
		timeout: timeout,
		writer:  writer,
		lines:   make(chan string, linesBuffer),
	}

	go player.readLines(reader)

	return player
}

// Start - runs the bot command through the shell and wires its stdin and stdout.
func Start(ctx context.Context, logger *slog.Logger, id int, name, command string, timeout time.Duration) (*Player, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open bot stdin: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open bot stdout: %w", err)
	}

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start bot %s: %w", name, err)
	}

	player := New(logger, id, name, stdout, stdin, timeout)
	player.closer = func() error {
		if err := stdin.Close(); err != nil {
			return fmt.Errorf("failed to close bot stdin: %w", err)
		}

		if err := cmd.Wait(); err != nil {
			return fmt.Errorf("bot exited: %w", err)
		}

		return nil
	}

	return player, nil
}

func (that *Player) readLines(reader io.Reader) {
	defer close(that.lines)

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		that.lines <- scanner.Text()
	}

	if err := scanner.Err(); err != nil {
		that.logger.Error("failed to read bot output", "error", err)
	}
}

func (that *Player) ID() int {
	return that.id
}

func (that *Player) Name() string {
	return that.name
}

func (that *Player) SendSetting(_ context.Context, key string, value any) error {
	return that.writeLine(fmt.Sprintf("settings %s %v", key, value))
}

func (that *Player) SendUpdate(_ context.Context, key string, value any) error {
	return that.writeLine(fmt.Sprintf("update game %s %v", key, value))
}

// RequestMove - asks for an action and waits for one line. Lines the bot sent unasked are dropped first.
func (that *Player) RequestMove(ctx context.Context, action string) (string, error) {
	that.drain()

	if err := that.writeLine(fmt.Sprintf("action %s %d", action, that.timeout.Milliseconds())); err != nil {
		return "", err
	}

	var deadline <-chan time.Time
	if that.timeout > 0 {
		timer := time.NewTimer(that.timeout)
		defer timer.Stop()

		deadline = timer.C
	}

	select {
	case line, ok := <-that.lines:
		if !ok {
			return "", ErrClosed
		}

		that.logger.Debug("bot answered", "action", action, "answer", line)

		return line, nil
	case <-deadline:
		return "", fmt.Errorf("%w: %s", ErrTimeout, that.timeout)
	case <-ctx.Done():
		return "", fmt.Errorf("request cancelled: %w", ctx.Err())
	}
}

// OutputEngineWarning - keeps a warning for this bot only.
func (that *Player) OutputEngineWarning(message string) {
	that.logger.Warn("engine warning", "message", message)
	that.warnings = append(that.warnings, message)
}

func (that *Player) Warnings() []string {
	warnings := make([]string, len(that.warnings))
	copy(warnings, that.warnings)

	return warnings
}

// Close - closes the bot input and waits for the process when the player was started from a command.
func (that *Player) Close() error {
	if that.closer == nil {
		return nil
	}

	return that.closer()
}

func (that *Player) drain() {
	for {
		select {
		case line, ok := <-that.lines:
			if !ok {
				return
			}

			that.logger.Debug("dropping unrequested output", "line", line)
		default:
			return
		}
	}
}

func (that *Player) writeLine(line string) error {
	if _, err := io.WriteString(that.writer, line+"\n"); err != nil {
		return fmt.Errorf("failed to write to bot: %w", err)
	}

	return nil
}
