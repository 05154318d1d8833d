package message

// Type distinguishes the two kinds of routable message
type Type string

const (
	// Command is an instruction to change the state of one consistency boundary
	Command Type = "command"

	// Event is a fact about something that has already happened
	Event Type = "event"
)

// Message is a generic message that can be routed to an event or command handler
type Message interface {
	MessageType() Type
}
