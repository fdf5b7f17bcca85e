package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionJoinNow Action = "join_now"
	// ActionPing is answered with a pong event. Pages need not send it: the
	// server pings at the protocol level and the browser's pongs keep the
	// connection open.
	ActionPing Action = "ping"
)

// RequestEnvelope is every message a dashboard page sends.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState Event = "state"
	EventOpen  Event = "open"
	EventError Event = "error"
	EventPong  Event = "pong"
)

// StateResponse reports the join state, with a toast message when there is
// something to tell the parent.
type StateResponse struct {
	Event   Event  `json:"event"`
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
}

// OpenResponse tells the page to open the class in a new tab. It is sent at
// most once per connection.
type OpenResponse struct {
	Event   Event  `json:"event"`
	JoinURL string `json:"join_url"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
