package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/scribeworks/redline/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 64,
	WriteBufferSize: 1024 * 64,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev; restrict in production
	},
}

// WebSocket message types from client.
const (
	wsMsgPropose    = "propose"
	wsMsgConfirm    = "confirm"
	wsMsgConfirmAll = "confirm_all"
	wsMsgReject     = "reject"
)

// WebSocket message types to client. Apply and discard are the outbound
// instructions of the patch dispatcher, consumed by the connected editor.
const (
	wsMsgSession  = "session"
	wsMsgApply    = "apply"
	wsMsgDiscard  = "discard"
	wsMsgResolved = "resolved"
	wsMsgError    = "error"
)

// wsMessage is the envelope for WebSocket messages in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsPropose is the payload for "propose" messages.
type wsPropose struct {
	Doc      string         `json:"doc"`
	Proposal model.Proposal `json:"proposal"`
}

// wsConfirm is the payload for "confirm" messages.
type wsConfirm struct {
	Doc         string `json:"doc"`
	ParagraphID string `json:"paragraph_id"`
}

// wsResolve is the payload for confirm_all/reject messages.
type wsResolve struct {
	Doc string `json:"doc"`
}

// wsInstruction is pushed to editors on apply/discard.
type wsInstruction struct {
	DiffAreaID string       `json:"diff_area_id"`
	Diffs      []model.Diff `json:"diffs,omitempty"`
}

// wsResolvedMsg tells review clients how a session ended.
type wsResolvedMsg struct {
	Doc   string `json:"doc"`
	State string `json:"state"`
}

// wsClient wraps a connection with a write lock. The connection's read
// loop replies to client messages while the hub broadcasts instructions
// from HTTP handler goroutines, and gorilla connections allow only one
// writer at a time.
type wsClient struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (c *wsClient) send(msgType string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(wsMessage{Type: msgType, Data: data})
}

func (c *wsClient) sendError(msg string) {
	c.send(wsMsgError, map[string]string{"message": msg})
}

// wsHub tracks connected editor clients and implements the session
// package's Applier contract by pushing instructions to them.
type wsHub struct {
	mu    sync.Mutex
	conns map[*wsClient]bool
}

func newWSHub() *wsHub {
	return &wsHub{conns: make(map[*wsClient]bool)}
}

func (h *wsHub) add(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = true
}

func (h *wsHub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
}

// Apply pushes the apply instruction, full diff set included, to every
// connected editor. The diffs carry their relocation hints so the editor
// can re-find each target span in its live content.
func (h *wsHub) Apply(diffAreaID string, diffs []model.Diff) error {
	if !h.broadcast(wsMsgApply, wsInstruction{DiffAreaID: diffAreaID, Diffs: diffs}) {
		return errors.New("no editor connected")
	}
	return nil
}

// Discard pushes the discard instruction: drop markers, touch nothing.
func (h *wsHub) Discard(diffAreaID string) {
	h.broadcast(wsMsgDiscard, wsInstruction{DiffAreaID: diffAreaID})
}

func (h *wsHub) broadcast(msgType string, v any) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := false
	for c := range h.conns {
		if err := c.send(msgType, v); err != nil {
			log.Warn().Err(err).Msg("websocket broadcast failed")
			continue
		}
		sent = true
	}
	return sent
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade")
		return
	}
	client := &wsClient{conn: conn}
	s.hub.add(client)
	defer func() {
		s.hub.remove(client)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("websocket read")
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			client.sendError("invalid message format")
			continue
		}

		switch msg.Type {
		case wsMsgPropose:
			s.handleWSPropose(client, msg.Data)
		case wsMsgConfirm:
			s.handleWSConfirm(client, msg.Data)
		case wsMsgConfirmAll:
			s.handleWSConfirmAll(client, msg.Data)
		case wsMsgReject:
			s.handleWSReject(client, msg.Data)
		default:
			client.sendError("unknown message type: " + msg.Type)
		}
	}
}

func (s *Server) handleWSPropose(client *wsClient, data json.RawMessage) {
	var req wsPropose
	if err := json.Unmarshal(data, &req); err != nil {
		client.sendError("invalid propose data")
		return
	}
	if req.Doc == "" {
		client.sendError("doc is required")
		return
	}

	sess, err := s.manager.Open(req.Doc, req.Proposal)
	if err != nil {
		client.sendError(err.Error())
		return
	}
	client.send(wsMsgSession, sessionToJSON(req.Doc, sess))
}

func (s *Server) handleWSConfirm(client *wsClient, data json.RawMessage) {
	var req wsConfirm
	if err := json.Unmarshal(data, &req); err != nil {
		client.sendError("invalid confirm data")
		return
	}
	s.manager.ConfirmParagraph(req.Doc, req.ParagraphID)
	if sess := s.manager.Get(req.Doc); sess != nil {
		client.send(wsMsgSession, sessionToJSON(req.Doc, sess))
	}
}

func (s *Server) handleWSConfirmAll(client *wsClient, data json.RawMessage) {
	var req wsResolve
	if err := json.Unmarshal(data, &req); err != nil {
		client.sendError("invalid confirm_all data")
		return
	}
	if err := s.manager.ConfirmAll(req.Doc); err != nil {
		client.sendError(err.Error())
		return
	}
	client.send(wsMsgResolved, wsResolvedMsg{Doc: req.Doc, State: "applied"})
}

func (s *Server) handleWSReject(client *wsClient, data json.RawMessage) {
	var req wsResolve
	if err := json.Unmarshal(data, &req); err != nil {
		client.sendError("invalid reject data")
		return
	}
	s.manager.Reject(req.Doc)
	client.send(wsMsgResolved, wsResolvedMsg{Doc: req.Doc, State: "discarded"})
}
