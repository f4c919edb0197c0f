// Package server provides the HTTP server and routing for the simulator.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/aristath/qsim/internal/events"
)

// wsWriteWait bounds how long one websocket write may block.
const wsWriteWait = 10 * time.Second

// runStreamTypes are the event types forwarded to run stream clients.
var runStreamTypes = map[events.EventType]bool{
	events.RunStarted:     true,
	events.RunCompleted:   true,
	events.RunFailed:      true,
	events.SweepQueued:    true,
	events.SweepStarted:   true,
	events.SweepProgress:  true,
	events.SweepCompleted: true,
	events.SweepFailed:    true,
}

// RunStreamHandler pushes run and sweep lifecycle events to websocket clients.
type RunStreamHandler struct {
	eventBus *events.Bus
	log      zerolog.Logger
}

// NewRunStreamHandler creates a new run stream handler.
func NewRunStreamHandler(eventBus *events.Bus, log zerolog.Logger) *RunStreamHandler {
	return &RunStreamHandler{
		eventBus: eventBus,
		log:      log.With().Str("component", "run_stream").Logger(),
	}
}

// runStreamMessage is the wire form of one pushed event.
type runStreamMessage struct {
	Type      string                 `json:"type"`
	Module    string                 `json:"module"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// ServeHTTP handles GET /api/ws/runs requests.
func (h *RunStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	h.log.Info().Msg("Client connected to run stream")

	eventChan := h.eventBus.Subscribe("")
	defer h.eventBus.Unsubscribe(eventChan)

	// The client never sends application messages. CloseRead keeps control
	// frames flowing and cancels the context when the connection dies.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from run stream")
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case event, ok := <-eventChan:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if !runStreamTypes[event.Type] {
				continue
			}

			if err := h.writeEvent(ctx, conn, event); err != nil {
				h.log.Debug().Err(err).Msg("Run stream write failed")
				return
			}
		}
	}
}

// writeEvent sends one event to the client with a write deadline.
func (h *RunStreamHandler) writeEvent(ctx context.Context, conn *websocket.Conn, event events.Event) error {
	msg := runStreamMessage{
		Type:      string(event.Type),
		Module:    event.Module,
		Timestamp: event.Timestamp.Format(time.RFC3339),
		Data:      event.Data,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, wsWriteWait)
	defer cancel()

	return conn.Write(writeCtx, websocket.MessageText, data)
}
