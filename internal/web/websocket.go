package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds each write to the hijacked connection.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for simplicity
	},
}

// handleWebSocket streams a run's state changes as JSON until it finishes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		http.Error(w, "run_id is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Subscribe before reading the current state so no transition is missed.
	updates := s.runMgr.Subscribe(runID)
	defer s.runMgr.Unsubscribe(runID, updates)

	run, err := s.runMgr.GetRun(runID)
	if err != nil {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run not found"))
		return
	}
	if err := s.writeRun(conn, run); err != nil || run.State.Terminal() {
		return
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case run, ok := <-updates:
			if !ok {
				return
			}

			if err := s.writeRun(conn, run); err != nil {
				s.logger.Error("Failed to write WebSocket message: %v", err)
				return
			}

			if run.State.Terminal() {
				return
			}

		case <-ticker.C:
			// Send ping to keep connection alive
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Server) writeRun(conn *websocket.Conn, run Run) error {
	data, err := json.Marshal(runToResponse(run))
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
