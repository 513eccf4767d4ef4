package bridge

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true }, // localhost-only bridge
}

// listen attempts to bind 127.0.0.1:port for the bridge's own HTTP/WS
// server. Returns the listener or an error the caller uses to decide
// whether to fall back to proxy-client mode.
func listen(port int) (net.Listener, error) {
	return net.Listen("tcp", "127.0.0.1:"+strconv.Itoa(port))
}

// serve runs the bridge's WebSocket server on ln until the listener is
// closed, accepting both browser and subprocess peers on the same
// endpoint. A connection's kind is fixed at upgrade time: Subprocess when
// the request URL carries role=subprocess, Browser otherwise.
func (b *Bridge) serve(ln net.Listener) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", b.handleUpgrade)
	srv := &http.Server{Handler: mux}
	log.Printf("[Bridge] serving on %s", ln.Addr())
	go func() {
		if err := srv.Serve(ln); err != nil {
			log.Printf("[Bridge] server stopped: %v", err)
		}
		b.markDone()
	}()
}

func (b *Bridge) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Bridge] upgrade failed: %v", err)
		return
	}
	kind := KindBrowser
	if r.URL.Query().Get("role") == "subprocess" {
		kind = KindSubprocess
	}
	b.serveConn(kind, conn, false)
}

// serveConn runs a connection's reader and writer loops, joined so that
// either side terminating releases both, matching a writer task + reader
// task joined by select. When isLifeline is true (the proxy-client's
// single connection to its parent), the reader loop ending also marks
// the whole Bridge done so the supervisor recreates it.
func (b *Bridge) serveConn(kind ClientKind, conn *websocket.Conn, isLifeline bool) {
	c := b.registerClient(kind, conn)
	defer func() {
		_ = conn.Close()
		b.removeClient(c)
		if isLifeline {
			b.markDone()
		}
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case payload, ok := <-c.send:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			case <-c.closed:
				return
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if isLifeline {
			// Eval broadcasts from the parent are meant for the browser;
			// the proxy ignores them instead of echoing them back.
			var env inboundEnvelope
			if json.Unmarshal(raw, &env) == nil && env.Action == "eval" {
				continue
			}
		}
		b.handleMessage(c, raw)
	}
	c.markClosed()
	<-writerDone
}
