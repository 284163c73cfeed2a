package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/pyq-ai/pyq-assistant/internal/roadmap"
)

// dragMessage is one client frame on the drag stream. Type is "begin",
// "move" or "release"; Width accompanies begin, X accompanies move.
type dragMessage struct {
	Type  string  `json:"type"`
	Width float64 `json:"width,omitempty"`
	X     float64 `json:"x,omitempty"`
}

// dragReply is the server frame sent after each applied message.
type dragReply struct {
	State sessionState `json:"state"`
	Error string       `json:"error,omitempty"`
}

// handleDragStream upgrades to a websocket and runs one drag conversation:
// the client begins a drag with the track width, streams pointer offsets, and
// releases. Each frame is answered with the full derived session state.
func (s *Server) handleDragStream(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	s.runDragLoop(r.Context(), conn, entry)
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) runDragLoop(ctx context.Context, conn *websocket.Conn, entry *sessionEntry) {
	var drag *roadmap.Drag

	// The handle must not outlive the connection.
	defer func() {
		if drag != nil {
			drag.Release()
		}
	}()

	for {
		var msg dragMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				slog.Warn("drag stream read failed", "session", entry.ID, "error", err)
			}
			return
		}

		reply := dragReply{}
		switch msg.Type {
		case "begin":
			if drag != nil {
				reply.Error = "drag already active"
				break
			}
			d, err := entry.Session.BeginDrag(msg.Width)
			if err != nil {
				reply.Error = err.Error()
				break
			}
			drag = d
		case "move":
			if drag == nil {
				reply.Error = "no active drag"
				break
			}
			drag.Move(msg.X)
		case "release":
			if drag != nil {
				drag.Release()
				drag = nil
			}
		default:
			reply.Error = "unknown message type: " + msg.Type
		}

		reply.State = stateOf(entry)
		if err := wsjson.Write(ctx, conn, reply); err != nil {
			return
		}
	}
}
