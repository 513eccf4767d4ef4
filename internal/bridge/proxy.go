package bridge

import (
	"fmt"
	"log"
	"net/url"

	"github.com/gorilla/websocket"
)

// newProxyBridge dials the peer that owns port and returns a Bridge that
// reuses the same client/pending plumbing locally, with a single
// synthetic Subprocess client wrapping the outbound connection to the
// parent. Its Done channel closes when the connection to the parent is
// lost, so the supervisor recreates it (retrying proxy mode, or binding
// directly if the parent has since exited) on the next Global() call.
func newProxyBridge(port int) (*Bridge, error) {
	u := url.URL{Scheme: "ws", Host: fmt.Sprintf("127.0.0.1:%d", port), Path: "/", RawQuery: "role=subprocess"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("bridge: proxy dial failed: %w", err)
	}

	b := newBridge()
	go b.serveConn(KindSubprocess, conn, true)

	log.Printf("[Bridge] proxy-client mode connected to parent at %s", u.String())
	return b, nil
}
