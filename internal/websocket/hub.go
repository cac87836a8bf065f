package websocket

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/models"
	"chatbot-backend/internal/services"
)

const writeWait = 10 * time.Second

type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeLocked(v)
}

func (c *conn) writeLocked(v interface{}) error {
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

// subscription is the broker subscription shared by a session's sockets. mu
// serializes Subscribe and unsubscribe so neither runs under the hub lock.
type subscription struct {
	mu          sync.Mutex
	refs        int
	unsubscribe func()
}

// Hub pushes auth-state changes to every page open in a browser session. The
// broker subscription lives as long as the session has at least one socket.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*conn
	subs        map[string]*subscription
	broker      services.AuthBroker
	upgrader    websocket.Upgrader
	log         logrus.FieldLogger
}

func NewHub(broker services.AuthBroker, allowedOrigins []string, log logrus.FieldLogger) *Hub {
	h := &Hub{
		connections: make(map[string][]*conn),
		subs:        make(map[string]*subscription),
		broker:      broker,
		log:         log.WithField("component", "ws_hub"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// HandleAuthEvents upgrades the request, sends the current auth state and then
// every change. Requires the BrowserSession and SessionAuth middleware.
func (h *Hub) HandleAuthEvents(w http.ResponseWriter, r *http.Request) {
	sid := middleware.GetBrowserSessionID(r.Context())
	if sid == "" {
		http.Error(w, "Missing browser session", http.StatusBadRequest)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	// The write lock is held from joining until the initial state is out, so
	// a change published meanwhile is written after it, never before.
	c := &conn{ws: ws}
	c.mu.Lock()
	h.addConnection(sid, c)
	h.acquire(sid)
	err = c.writeLocked(models.WSMessage{Type: models.WSTypeAuthState, User: middleware.GetUser(r.Context())})
	c.mu.Unlock()
	if err != nil {
		h.unregisterConnection(sid, c)
		return
	}

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(sid, c)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) addConnection(sid string, c *conn) {
	h.mu.Lock()
	h.connections[sid] = append(h.connections[sid], c)
	total := len(h.connections[sid])
	h.mu.Unlock()

	h.log.WithFields(logrus.Fields{"session_id": sid, "total": total}).Debug("WebSocket connected")
}

// acquire takes a reference on the session's subscription, subscribing on
// first use. The broker call may block on the network.
func (h *Hub) acquire(sid string) {
	h.mu.Lock()
	sub := h.subs[sid]
	if sub == nil {
		sub = &subscription{}
		h.subs[sid] = sub
	}
	sub.refs++
	h.mu.Unlock()

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.unsubscribe == nil {
		sub.unsubscribe = h.broker.Subscribe(context.Background(), sid, func(user *models.User) {
			h.broadcast(sid, models.WSMessage{Type: models.WSTypeAuthState, User: user})
		})
	}
}

func (h *Hub) release(sid string) {
	h.mu.Lock()
	sub := h.subs[sid]
	if sub == nil {
		h.mu.Unlock()
		return
	}
	sub.refs--
	last := sub.refs == 0
	if last {
		delete(h.subs, sid)
	}
	h.mu.Unlock()

	if !last {
		return
	}
	// A Redis unsubscribe waits for its reader goroutine, which may be
	// blocked in broadcast.
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.unsubscribe != nil {
		sub.unsubscribe()
		sub.unsubscribe = nil
	}
}

func (h *Hub) unregisterConnection(sid string, c *conn) {
	h.mu.Lock()
	conns := h.connections[sid]
	for i, existing := range conns {
		if existing == c {
			h.connections[sid] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.connections[sid]) == 0 {
		delete(h.connections, sid)
	}
	h.mu.Unlock()

	c.ws.Close()
	h.release(sid)

	h.log.WithField("session_id", sid).Debug("WebSocket disconnected")
}

func (h *Hub) broadcast(sid string, msg models.WSMessage) {
	h.mu.RLock()
	conns := append([]*conn(nil), h.connections[sid]...)
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.writeJSON(msg); err != nil {
			h.log.WithError(err).WithField("session_id", sid).Debug("dropping auth state write")
		}
	}
}

// ConnectionCount reports open sockets for a browser session.
func (h *Hub) ConnectionCount(sid string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[sid])
}

// originChecker accepts same-host requests and the configured origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if set["*"] || set[origin] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
