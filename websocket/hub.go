package websocket

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EarningEvent is pushed to a member's open sockets whenever their wallet is
// credited.
type EarningEvent struct {
	MemberCode string          `json:"member_code"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	At         time.Time       `json:"at"`
}

type Client struct {
	MemberCode string
	Conn       *websocket.Conn
}

var clients = make(map[string]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var events = make(chan EarningEvent, 256)

// Publish queues an event for delivery. It never blocks the caller; when the
// queue is full the event is dropped.
func Publish(event EarningEvent) {
	select {
	case events <- event:
	default:
		log.WithField("member_code", event.MemberCode).Warn("earnings feed queue full, event dropped")
	}
}

// Connected reports whether the member has a live socket.
func Connected(memberCode string) bool {
	clientsMu.RLock()
	defer clientsMu.RUnlock()
	_, ok := clients[memberCode]
	return ok
}

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Infof("Client registered: %s", client.MemberCode)
			clientsMu.Lock()
			clients[client.MemberCode] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Infof("Client unregistered: %s", client.MemberCode)
			clientsMu.Lock()
			if conn, ok := clients[client.MemberCode]; ok && conn == client.Conn {
				delete(clients, client.MemberCode)
			}
			clientsMu.Unlock()
		case event := <-events:
			clientsMu.RLock()
			conn, ok := clients[event.MemberCode]
			clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Errorf("Error sending earning to %s: %v", event.MemberCode, err)
				conn.Close()
				clientsMu.Lock()
				if current, ok := clients[event.MemberCode]; ok && current == conn {
					delete(clients, event.MemberCode)
				}
				clientsMu.Unlock()
			}
		}
	}
}
