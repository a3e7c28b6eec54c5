package netsync

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	neturl "net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pixelminer/shared/protocol"
)

// Msg is one inbound envelope off the wire.
type Msg = protocol.MsgEnvelope

const writeWait = 10 * time.Second

// Net is the game's websocket connection: one reader goroutine feeding a
// buffered channel. Sends happen from several goroutines (the game loop,
// the delayed launch confirm, the world sync), so the mutex is held across
// the whole write; the websocket allows only one writer at a time.
type Net struct {
	mu     sync.Mutex
	conn   *websocket.Conn // set once in Dial, never reassigned
	inCh   chan Msg
	closed bool
}

// Dial connects to the server. A non-empty token authenticates the
// connection; empty plays as a guest.
func Dial(wsURL, token string) (*Net, error) {
	hdr := http.Header{}
	if token != "" {
		hdr.Set("Authorization", "Bearer "+token)
		if u, err := neturl.Parse(wsURL); err == nil {
			q := u.Query()
			q.Set("token", token)
			u.RawQuery = q.Encode()
			wsURL = u.String()
		}
	}

	dialer := websocket.Dialer{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
	}
	c, _, err := dialer.Dial(wsURL, hdr)
	if err != nil {
		log.Printf("ws dial failed: %v", err)
		return nil, err
	}

	n := &Net{conn: c, inCh: make(chan Msg, 128)}
	go n.reader()
	return n, nil
}

func (n *Net) reader() {
	for {
		_, data, err := n.conn.ReadMessage()
		if err != nil {
			n.mu.Lock()
			n.closed = true
			n.mu.Unlock()
			close(n.inCh)
			return
		}
		var m Msg
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		n.inCh <- m
	}
}

// Recv returns the inbound message channel. It closes when the connection
// tears down.
func (n *Net) Recv() <-chan Msg { return n.inCh }

func (n *Net) Send(t string, v interface{}) error {
	b, _ := json.Marshal(struct {
		Type string      `json:"type"`
		Data interface{} `json:"data"`
	}{Type: t, Data: v})

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return errors.New("netsync: write on closed connection")
	}
	_ = n.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := n.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		n.closed = true
		_ = n.conn.Close()
		return err
	}
	return nil
}

// IsClosed reports whether the connection has been torn down.
func (n *Net) IsClosed() bool {
	if n == nil {
		return true
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

// Close shuts the websocket down. Closing the conn unblocks the reader's
// pending read, which then marks the state and closes the inbound channel.
func (n *Net) Close() error {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.mu.Unlock()
	return n.conn.Close()
}
