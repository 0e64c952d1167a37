package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/hlog"

	"wfquiz/internal/game"
)

const (
	wsWriteWait  = 10 * time.Second
	wsMaxMessage = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// clientMessage is an input event sent over the socket.
type clientMessage struct {
	Type       string `json:"type"`
	Difficulty string `json:"difficulty,omitempty"`
	Slot       int    `json:"slot,omitempty"`
	Value      string `json:"value,omitempty"`
}

// serverMessage is either a full session snapshot or the reply to one input.
type serverMessage struct {
	Type    string         `json:"type"`
	State   *game.Snapshot `json:"state,omitempty"`
	Outcome string         `json:"outcome,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan serverMessage
}

func (h *SessionHandler) socket(w http.ResponseWriter, r *http.Request) {
	sess, cookie := h.resolve(r)
	header := http.Header{}
	if cookie != nil {
		header.Add("Set-Cookie", cookie.String())
	}
	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	logger := hlog.FromRequest(r).With().Str("session", sess.ID).Logger()
	logger.Debug().Msg("websocket connected")

	hub := h.store.Broadcaster(sess.ID)
	sub := hub.Subscribe()
	client := &wsClient{conn: conn, send: make(chan serverMessage, 8)}
	replies := make(chan serverMessage, 8)
	done := make(chan struct{})

	go func() {
		defer close(client.send)
		push := func(msg serverMessage) bool {
			select {
			case client.send <- msg:
				return true
			case <-done:
				return false
			}
		}
		if !push(h.stateMessage(sess)) {
			return
		}
		for {
			select {
			case <-done:
				return
			case _, open := <-sub:
				if !open {
					return
				}
				if !push(h.stateMessage(sess)) {
					return
				}
			case msg := <-replies:
				if !push(msg) {
					return
				}
			}
		}
	}()
	go client.writePump()

	client.readPump(func(msg clientMessage) {
		select {
		case replies <- h.dispatch(sess, msg):
		default:
		}
	})
	close(done)
	hub.Unsubscribe(sub)
	logger.Debug().Msg("websocket disconnected")
}

func (h *SessionHandler) stateMessage(sess *game.Session) serverMessage {
	snap := sess.Snapshot(h.store.Now())
	return serverMessage{Type: "state", State: &snap}
}

func (h *SessionHandler) dispatch(sess *game.Session, msg clientMessage) serverMessage {
	var (
		out game.Outcome
		err error
	)
	switch msg.Type {
	case "state":
		return h.stateMessage(sess)
	case "start":
		err = h.doStart(sess, msg.Difficulty)
	case "menu":
		err = h.doMenu(sess)
	case "choice":
		out, err = h.doChoice(sess, msg.Slot)
	case "answer":
		out, err = h.doAnswer(sess, msg.Value)
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}
	if err != nil {
		return serverMessage{Type: "error", Error: err.Error()}
	}
	if msg.Type == "choice" || msg.Type == "answer" {
		return serverMessage{Type: "outcome", Outcome: out.String()}
	}
	return serverMessage{Type: "ok"}
}

func (c *wsClient) readPump(handle func(clientMessage)) {
	defer func() {
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(wsMaxMessage)
	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		handle(msg)
	}
}

func (c *wsClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
