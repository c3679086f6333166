package web

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/pkg/logger"
)

const (
	liveSendBuffer = 64
	liveWriteWait  = 10 * time.Second
)

// LiveFeed pushes audit entries to connected websocket clients as they
// happen. It satisfies the moderation pipeline's telemetry hook: publishing
// never blocks, slow clients are disconnected.
type LiveFeed struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*websocket.Conn]chan []byte
}

// NewLiveFeed creates an empty feed
func NewLiveFeed() *LiveFeed {
	return &LiveFeed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// PublishAudit broadcasts an audit entry to every connected client. Clients
// that cannot keep up have their queue dropped on the floor.
func (f *LiveFeed) PublishAudit(entry moderation.AuditEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for conn, send := range f.clients {
		select {
		case send <- data:
		default:
			logger.Debug(fmt.Sprintf("live feed client %s too slow, dropping entry", conn.RemoteAddr()), "WebServer")
		}
	}
}

// Handler upgrades the request to a websocket and streams audit entries
// until the client disconnects
func (f *LiveFeed) Handler(c *gin.Context) {
	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(fmt.Sprintf("websocket upgrade failed: %v", err), "WebServer")
		return
	}

	send := make(chan []byte, liveSendBuffer)

	f.mu.Lock()
	f.clients[conn] = send
	f.mu.Unlock()

	logger.Info(fmt.Sprintf("live feed client connected: %s", conn.RemoteAddr()), "WebServer")

	go f.writeLoop(conn, send)
	f.readLoop(conn)
}

func (f *LiveFeed) writeLoop(conn *websocket.Conn, send chan []byte) {
	for data := range send {
		conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			f.drop(conn)
			return
		}
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readLoop discards inbound frames; its job is noticing the disconnect
func (f *LiveFeed) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.drop(conn)
			return
		}
	}
}

func (f *LiveFeed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	if send, ok := f.clients[conn]; ok {
		delete(f.clients, conn)
		close(send)
	}
	f.mu.Unlock()
	conn.Close()
}
