package websocket

import (
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openboard/sketchd/dispatch"
	"github.com/openboard/sketchd/protocol"
	"github.com/openboard/sketchd/room"
	"github.com/openboard/sketchd/session"
)

// Options tunes per-connection behavior. The zero value selects the
// defaults from the session package.
type Options struct {
	RateThreshold int
	RateWindow    time.Duration
}

// Server upgrades HTTP requests and owns the lifecycle of every client
// connection.
type Server struct {
	registry *room.Registry
	router   *dispatch.Router
	upgrader websocket.Upgrader

	ids   session.IDSource
	conns atomic.Int64

	rateThreshold int
	rateWindow    time.Duration
}

// NewServer creates the connection handler over a registry and its
// event router.
func NewServer(registry *room.Registry, router *dispatch.Router, opts Options) *Server {
	if opts.RateThreshold <= 0 {
		opts.RateThreshold = session.DefaultRateThreshold
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = session.DefaultRateWindow
	}
	return &Server{
		registry: registry,
		router:   router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		rateThreshold: opts.RateThreshold,
		rateWindow:    opts.RateWindow,
	}
}

// ActiveConnections returns the number of currently open connections.
func (s *Server) ActiveConnections() int64 { return s.conns.Load() }

// HandleSocket upgrades the request and serves the connection until it
// closes. This is the only entry point of the core.
func (s *Server) HandleSocket(w http.ResponseWriter, r *http.Request) {
	sock, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := newConn(sock)
	u := session.NewUser(s.ids.Next(), c, session.NewRateLimiter(s.rateThreshold, s.rateWindow))

	s.conns.Add(1)
	log.Printf("%s connected (open connections: %d)", u, s.conns.Load())

	go c.pingLoop()
	s.readLoop(u, c)

	s.teardown(u)
	c.Close()
	s.conns.Add(-1)
	log.Printf("%s disconnected (open connections: %d)", u, s.conns.Load())
}

// readLoop pumps inbound frames until the connection errors or closes.
func (s *Server) readLoop(u *session.User, c *conn) {
	c.sock.SetReadLimit(maxMessageSize)
	c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		c.sock.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, data, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("%s read error: %v", u, err)
			}
			return
		}

		// Every inbound frame counts against the flood window, binary
		// and text alike. A throttled message is dropped, not fatal.
		if !u.Rate().Allow() {
			log.Printf("%s: %v, dropping message", u, session.ErrRateLimited)
			continue
		}

		switch kind {
		case websocket.TextMessage:
			err = s.router.Dispatch(u, data)
		case websocket.BinaryMessage:
			err = s.handleFrame(u, data)
		default:
			err = protocol.ErrUnknownFrameKind
		}

		if err != nil {
			log.Printf("%s: dropping message: %v", u, err)
			if !dispatch.IsRecoverable(err) {
				// Uncategorized fault: run the error path, which is
				// the same teardown as a clean close.
				return
			}
		}
	}
}

// handleFrame routes one binary position frame. Layout is
// [roomCode, mode, ...payload]; forwarding prepends the sender id.
func (s *Server) handleFrame(u *session.User, data []byte) error {
	frame, err := protocol.DecodeFrame(data)
	if err != nil {
		return err
	}

	rm, err := s.registry.GetWithMembership(u, protocol.FrameRoom(frame))
	if err != nil {
		return err
	}

	if protocol.FrameMode(frame) == protocol.ModeBulkInit {
		rm.ServeBulkInit(u, frame)
		return nil
	}
	rm.BroadcastFrame(u, u.EncodePositionFrame(frame))
	return nil
}

// teardown removes the user from every room it joined. Each room
// receives a disconnect event; the room field is omitted because the
// event goes to all of the user's rooms.
func (s *Server) teardown(u *session.User) {
	for _, code := range u.RoomCodes() {
		rm, ok := s.registry.Get(code)
		if !ok {
			continue
		}
		rm.BroadcastEvent(u, protocol.NewEvent(protocol.EvtDisconnect, u.ID(), 0, nil))
		if rm.RemoveMember(u) {
			s.registry.ReleaseIfEmpty(rm)
		}
	}
}
