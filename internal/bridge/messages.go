// Package bridge implements the supervised WebSocket broker between the
// automation core and a browser extension: eval request/response
// correlation, typed event ingestion, and a proxy-client fallback for
// processes that lose the race to bind the bridge port.
package bridge

import "encoding/json"

// ClientKind distinguishes the two kinds of bridge peers.
type ClientKind string

const (
	KindBrowser    ClientKind = "browser"
	KindSubprocess ClientKind = "subprocess"
)

// EvalRequest is the outbound message sent to the browser extension.
type EvalRequest struct {
	ID           string `json:"id"`
	Action       string `json:"action"`
	Code         string `json:"code"`
	AwaitPromise bool   `json:"await_promise"`
}

func newEvalRequest(id, code string, await bool) EvalRequest {
	return EvalRequest{ID: id, Action: "eval", Code: code, AwaitPromise: await}
}

// EvalResult is the inbound message carrying an eval outcome, sent by
// either the browser extension or, in proxy mode, forwarded by a peer.
type EvalResult struct {
	ID     string          `json:"id"`
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ProxyEval is sent by a subprocess client asking the bridge owner to run
// code on its behalf.
type ProxyEval struct {
	ID           string `json:"id"`
	Action       string `json:"action"`
	Code         string `json:"code"`
	AwaitPromise bool   `json:"await_promise"`
}

// TypedEvent covers the browser's unsolicited event notifications.
type TypedEvent struct {
	Type       string          `json:"type"`
	ID         string          `json:"id,omitempty"`
	Level      string          `json:"level,omitempty"`
	Args       json.RawMessage `json:"args,omitempty"`
	StackTrace string          `json:"stackTrace,omitempty"`
	Entry      string          `json:"entry,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	Ts         int64           `json:"ts,omitempty"`
}

// resetCommand is sent before a fresh eval burst to make the browser
// discard any stale in-page state.
type resetCommand struct {
	Action string `json:"action"`
}

func newResetCommand() resetCommand { return resetCommand{Action: "reset"} }

// inboundEnvelope is used only to sniff which of the three inbound shapes
// a raw message is before fully decoding it.
type inboundEnvelope struct {
	Action string `json:"action"`
	Type   string `json:"type"`
	ID     string `json:"id"`
	OK     *bool  `json:"ok"`
}
