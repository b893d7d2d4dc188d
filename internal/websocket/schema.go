package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventAttempt Event = "attempt"
	EventPong    Event = "pong"
)

// AttemptEventResponse relays one live attempt event to the host monitor.
// Payload carries the JSON event exactly as published on the exam channel.
type AttemptEventResponse struct {
	Event   Event  `json:"event"`
	Payload string `json:"payload"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
