package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/entity"
)

const (
	sendBuffer      = 64
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Message is what spectators receive for every recorded move.
type Message struct {
	MatchID string            `json:"match_id"`
	Record  entity.MoveRecord `json:"record"`
}

type client struct {
	conn    *websocket.Conn
	matchID string
	send    chan Message
}

// Hub broadcasts move records to websocket spectators.
// A spectator may pass ?match=<id> to follow one match only.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func New(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "spectators"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Publish - queues the record for every matching spectator. Spectators that cannot keep up are dropped.
func (that *Hub) Publish(matchID string, record entity.MoveRecord) {
	that.mu.Lock()
	defer that.mu.Unlock()

	message := Message{MatchID: matchID, Record: record}

	for c := range that.clients {
		if c.matchID != "" && c.matchID != matchID {
			continue
		}

		select {
		case c.send <- message:
		default:
			that.logger.Warn("dropping slow spectator", "remote", c.conn.RemoteAddr().String())
			that.removeLocked(c)
		}
	}
}

func (that *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn:    conn,
		matchID: r.URL.Query().Get("match"),
		send:    make(chan Message, sendBuffer),
	}

	that.mu.Lock()
	that.clients[c] = struct{}{}
	that.mu.Unlock()

	log.Info("spectator connected", "remote", conn.RemoteAddr().String(), "match", c.matchID)

	go that.writeLoop(c)

	// spectators only listen, reading detects the close
	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}

	that.mu.Lock()
	that.removeLocked(c)
	that.mu.Unlock()

	log.Info("spectator disconnected", "remote", conn.RemoteAddr().String())
}

// Clients - returns the number of connected spectators.
func (that *Hub) Clients() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.clients)
}

// Start - serves spectators on /ws until ctx is done.
func (that *Hub) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", that)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}

		that.closeAll()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return
		}

		if err := c.conn.WriteJSON(message); err != nil {
			that.logger.Warn("failed to write to spectator", "error", err)
			return
		}
	}

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
}

func (that *Hub) closeAll() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for c := range that.clients {
		that.removeLocked(c)
	}
}

// removeLocked - must be called with mu held. The writer closes the connection once send is drained.
func (that *Hub) removeLocked(c *client) {
	if _, ok := that.clients[c]; !ok {
		return
	}

	delete(that.clients, c)
	close(c.send)
}
