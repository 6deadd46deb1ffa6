// Package server exposes a session over a websocket so a browser or tablet
// client can draw on it.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/logger"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/session"
	"github.com/gorilla/websocket"
)

const (
	writeWait   = 10 * time.Second
	outboxSize  = 256
	maxMessage  = 64 << 10
	typeState   = "state"
	typeError   = "error"
	typeShapes  = "shapes"
	stateRoute  = "/state"
	socketRoute = "/ws"
)

var errMissingSlot = errors.New("missing slot")

// message is a client request. Fields unused by Type are ignored.
type message struct {
	Type    string       `json:"type"`
	Slot    *models.Slot `json:"slot,omitempty"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Color   models.Color `json:"color,omitempty"`
	Enabled bool         `json:"enabled"`
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	Name    string       `json:"name,omitempty"`
}

type reply struct {
	Type   string         `json:"type"`
	State  *session.State `json:"state,omitempty"`
	Shapes []string       `json:"shapes,omitempty"`
	Error  string         `json:"error,omitempty"`
}

type Server struct {
	session *session.Session
	shapes  []string
	mux     *http.ServeMux

	Upgrader websocket.Upgrader
}

// New serves sess. shapes is the list of names offered to clients.
func New(sess *session.Session, shapes []string) *Server {
	s := &Server{
		session: sess,
		shapes:  shapes,
		mux:     http.NewServeMux(),
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.mux.HandleFunc(socketRoute, s.handleSocket)
	s.mux.HandleFunc(stateRoute, s.handleState)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st := s.session.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		logger.Get().Warn("unable to encode state", "err", err)
	}
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Get().Error("unable to upgrade connection", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessage)

	log := logger.Get().With("remote", r.RemoteAddr)
	log.Debug("client connected")

	c := &client{conn: conn, outbox: make(chan reply, outboxSize), done: make(chan struct{})}
	unsubscribe := s.session.Subscribe(func(st session.State) {
		c.send(reply{Type: typeState, State: &st})
	})
	defer unsubscribe()

	st := s.session.Snapshot()
	c.send(reply{Type: typeState, State: &st})
	c.send(reply{Type: typeShapes, Shapes: s.shapes})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection closed", "err", err)
			}
			break
		}
		var m message
		if err := json.Unmarshal(data, &m); err != nil {
			c.send(reply{Type: typeError, Error: fmt.Sprintf("malformed message: %v", err)})
			continue
		}
		if err := s.dispatch(m); err != nil {
			log.Debug("rejected message", "type", m.Type, "err", err)
			c.send(reply{Type: typeError, Error: err.Error()})
		}
	}

	c.close()
	<-writerDone
	log.Debug("client disconnected")
}

func (s *Server) dispatch(m message) error {
	a, err := toAction(m)
	if err != nil {
		return err
	}
	return s.session.Dispatch(a)
}

func toAction(m message) (session.Action, error) {
	slot := func() (models.Slot, error) {
		if m.Slot == nil {
			return 0, fmt.Errorf("%s: %w", m.Type, errMissingSlot)
		}
		return *m.Slot, nil
	}

	switch m.Type {
	case "start_stroke":
		sl, err := slot()
		return session.StartStroke{Slot: sl}, err
	case "append_point":
		sl, err := slot()
		return session.AppendPoint{Slot: sl, X: m.X, Y: m.Y}, err
	case "end_stroke":
		sl, err := slot()
		return session.EndStroke{Slot: sl}, err
	case "clear":
		sl, err := slot()
		return session.Clear{Slot: sl}, err
	case "select_color":
		return session.SelectColor{Color: m.Color}, nil
	case "set_sync":
		return session.SetSyncMode{Enabled: m.Enabled}, nil
	case "compare":
		return session.Compare{Width: m.Width, Height: m.Height}, nil
	case "prepare_canvas":
		return session.PrepareCanvas{Width: m.Width, Height: m.Height}, nil
	case "select_shape":
		return session.SelectShape{Name: m.Name}, nil
	}
	return nil, fmt.Errorf("unknown message type %q", m.Type)
}

// client owns the write side of one connection.
type client struct {
	conn   *websocket.Conn
	outbox chan reply
	done   chan struct{}
	once   sync.Once
}

// send queues r without blocking. A client that cannot keep up is
// disconnected.
func (c *client) send(r reply) {
	select {
	case <-c.done:
	case c.outbox <- r:
	default:
		logger.Get().Warn("client too slow, disconnecting")
		c.close()
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.SetReadDeadline(time.Now())
	})
}

// writeLoop drains the outbox. States older than one already sent are
// skipped.
func (c *client) writeLoop() {
	var sent uint64
	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case r := <-c.outbox:
			if r.State != nil {
				if r.State.Version != 0 && r.State.Version <= sent {
					continue
				}
				sent = r.State.Version
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(r); err != nil {
				logger.Get().Warn("unable to write to client", "err", err)
				c.close()
				return
			}
		}
	}
}
