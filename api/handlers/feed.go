package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/jurychain-api/metrics"
	"github.com/linesmerrill/jurychain-api/models"
)

// Feed events
const (
	EventCaseSubmitted = "case_submitted"
	EventProofAttached = "proof_attached"
)

const (
	feedWriteTimeout = 5 * time.Second
	// events queued per subscriber before it is considered stalled and dropped
	feedBufferSize = 16
)

// Broadcaster pushes an event to every live subscriber
type Broadcaster interface {
	Broadcast(event string, data interface{})
}

// CaseFeed keeps the websocket subscribers of /ws/cases. Each subscriber has its
// own writer goroutine, so broadcasting never waits on the network.
type CaseFeed struct {
	upgrader websocket.Upgrader
	clients  map[*feedClient]struct{}
	mutex    sync.Mutex
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewCaseFeed creates an empty feed
func NewCaseFeed() *CaseFeed {
	return &CaseFeed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*feedClient]struct{}),
	}
}

// HandleCasesWebSocket upgrades the request and keeps the subscriber until it goes away
func (f *CaseFeed) HandleCasesWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade error", "error", err)
		return
	}

	c := &feedClient{conn: conn, send: make(chan []byte, feedBufferSize)}
	f.add(c)
	go f.writeLoop(c)
	zap.S().Infow("client connected to /ws/cases", "remote", conn.RemoteAddr().String())

	// Subscribers never send anything we care about; reading only detects the close
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}

	f.remove(c)
	zap.S().Infow("client disconnected from /ws/cases", "remote", conn.RemoteAddr().String())
}

// Broadcast queues the event for every subscriber. A subscriber whose queue is full
// is dropped.
func (f *CaseFeed) Broadcast(event string, data interface{}) {
	msg, err := json.Marshal(models.CaseEvent{Event: event, Data: data})
	if err != nil {
		zap.S().Errorw("failed to encode case event", "event", event, "error", err)
		return
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	for c := range f.clients {
		select {
		case c.send <- msg:
		default:
			zap.S().Warnw("dropping stalled /ws/cases subscriber",
				"event", event,
				"remote", c.conn.RemoteAddr().String())
			f.drop(c)
		}
	}
	metrics.SetFeedClients(len(f.clients))
}

func (f *CaseFeed) writeLoop(c *feedClient) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			zap.S().Warnw("error writing case event",
				"remote", c.conn.RemoteAddr().String(),
				"error", err)
			f.remove(c)
			return
		}
	}
}

// Len is the number of connected subscribers
func (f *CaseFeed) Len() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.clients)
}

// Close disconnects every subscriber
func (f *CaseFeed) Close() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	for c := range f.clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		f.drop(c)
	}
	metrics.SetFeedClients(0)
}

func (f *CaseFeed) add(c *feedClient) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.clients[c] = struct{}{}
	metrics.SetFeedClients(len(f.clients))
}

func (f *CaseFeed) remove(c *feedClient) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if _, ok := f.clients[c]; ok {
		f.drop(c)
	}
	metrics.SetFeedClients(len(f.clients))
}

// drop must be called with the mutex held and c still registered
func (f *CaseFeed) drop(c *feedClient) {
	delete(f.clients, c)
	close(c.send)
	c.conn.Close()
}
