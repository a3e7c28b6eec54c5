package netsync

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pixelminer/shared/protocol"
)

// wsServer upgrades each request and hands the conn to the handler.
func wsServer(t *testing.T, handler func(*websocket.Conn)) string {
	t.Helper()
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handler(c)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// drainConn reads until the peer goes away, keeping the conn alive.
func drainConn(c *websocket.Conn) {
	defer c.Close()
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func TestSendFromConcurrentGoroutines(t *testing.T) {
	url := wsServer(t, drainConn)
	n, err := Dial(url, "")
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	// The game loop, the delayed launch confirm, and the world sync all send
	// on the same conn; interleaved writes must come out as whole frames.
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if err := n.Send("playerMove", protocol.PlayerMove{X: float64(i)}); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent send failed: %v", err)
	}
}

func TestCloseWhileReaderBlocked(t *testing.T) {
	url := wsServer(t, drainConn)
	n, err := Dial(url, "")
	if err != nil {
		t.Fatal(err)
	}

	// Let the reader park in its blocking read before tearing down.
	time.Sleep(20 * time.Millisecond)
	if err := n.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case _, ok := <-n.Recv():
		if ok {
			t.Fatal("unexpected message during teardown")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not exit after Close")
	}

	if !n.IsClosed() {
		t.Fatal("IsClosed should report true after Close")
	}
	if err := n.Send("playerMove", protocol.PlayerMove{}); err == nil {
		t.Fatal("send after Close should fail")
	}
	// A second Close is a no-op.
	if err := n.Close(); err != nil {
		t.Fatalf("double close: %v", err)
	}
}

func TestSendRecvRoundtrip(t *testing.T) {
	url := wsServer(t, func(c *websocket.Conn) {
		defer c.Close()
		// Echo frames back verbatim.
		for {
			mt, data, err := c.ReadMessage()
			if err != nil {
				return
			}
			if err := c.WriteMessage(mt, data); err != nil {
				return
			}
		}
	})
	n, err := Dial(url, "")
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	if err := n.Send("blockMined", protocol.BlockMined{X: 7, Y: 3}); err != nil {
		t.Fatal(err)
	}
	select {
	case m, ok := <-n.Recv():
		if !ok {
			t.Fatal("channel closed before the echo arrived")
		}
		if m.Type != "blockMined" {
			t.Fatalf("echo type %q, want blockMined", m.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("echo never arrived")
	}
}

func TestDialCarriesToken(t *testing.T) {
	got := make(chan string, 1)
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("Authorization") + "|" + r.URL.Query().Get("token")
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		drainConn(c)
	}))
	defer srv.Close()

	n, err := Dial("ws"+strings.TrimPrefix(srv.URL, "http"), "tok123")
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	if v := <-got; v != "Bearer tok123|tok123" {
		t.Fatalf("token carried as %q", v)
	}
}
