// Package ws provides the WebSocket endpoint for real-time interview turns.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/codebuddy/server/internal/auth"
	"github.com/codebuddy/server/internal/hub"
	"github.com/codebuddy/server/internal/metrics"
	"github.com/codebuddy/server/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 64 * 1024
	respondTimeout = 30 * time.Second
)

// Server handles WebSocket connections.
type Server struct {
	hub      *hub.Hub
	service  *service.Service
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server. m may be nil.
func NewServer(h *hub.Hub, svc *service.Service, m *metrics.Metrics) *Server {
	return &Server{
		hub:     h,
		service: svc,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Client messages.
type inboundMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Response  string `json:"response,omitempty"`
	IsAudio   bool   `json:"is_audio,omitempty"`
}

// Server messages.
type outboundMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// HandleWebSocket upgrades the request and runs the connection lifecycle.
// The caller identity has already been resolved by the auth middleware.
func (s *Server) HandleWebSocket(c echo.Context) error {
	userID := auth.UserID(c)

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return err
	}

	conn := s.hub.NewConnection(ws, userID)
	s.hub.Register(conn)
	if s.metrics != nil {
		s.metrics.WSConnections.Inc()
	}

	ws.SetReadLimit(maxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

func (s *Server) readPump(conn *hub.Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
		if s.metrics != nil {
			s.metrics.WSConnections.Dec()
		}
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("websocket read error")
			}
			break
		}
		s.handleMessage(conn, message)
	}
}

func (s *Server) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleMessage(conn *hub.Connection, data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.send(conn, outboundMessage{Type: "error", Message: "invalid JSON message"})
		return
	}

	switch msg.Type {
	case "join":
		s.handleJoin(conn, &msg)
	case "respond":
		s.handleRespond(conn, &msg)
	default:
		s.send(conn, outboundMessage{Type: "error", Message: "unknown message type: " + msg.Type})
	}
}

// handleJoin subscribes the connection to a session channel after verifying
// the caller owns the session.
func (s *Server) handleJoin(conn *hub.Connection, msg *inboundMessage) {
	if msg.SessionID == "" {
		s.send(conn, outboundMessage{Type: "error", Message: "session_id is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.service.GetSession(ctx, msg.SessionID, conn.UserID); err != nil {
		s.send(conn, outboundMessage{Type: "error", SessionID: msg.SessionID, Message: "session not found"})
		return
	}

	s.hub.Join(conn, msg.SessionID)
	s.send(conn, outboundMessage{Type: "joined", SessionID: msg.SessionID})
}

// handleRespond submits an answer over the socket. The turn result comes back
// on this connection; the broadcast to co-viewers excludes it.
func (s *Server) handleRespond(conn *hub.Connection, msg *inboundMessage) {
	if conn.SessionID == "" {
		s.send(conn, outboundMessage{Type: "error", Message: "join a session first"})
		return
	}

	sessionID := conn.SessionID
	// Don't block the read loop on the model call.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), respondTimeout)
		defer cancel()

		result, err := s.service.Respond(ctx, sessionID, conn.UserID, msg.Response, msg.IsAudio, conn.ID)
		if err != nil {
			s.send(conn, outboundMessage{Type: "error", SessionID: sessionID, Message: err.Error()})
			return
		}
		s.send(conn, outboundMessage{Type: "turn", SessionID: sessionID, Payload: result})
	}()
}

func (s *Server) send(conn *hub.Connection, msg outboundMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case conn.Send <- data:
	default:
		log.Warn().Str("conn_id", conn.ID).Msg("send buffer full, dropping message")
	}
}
