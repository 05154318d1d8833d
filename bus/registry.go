package bus

// CommandRules is a map that determines routing for commands.
// The key is a zero value of the command, and the value is the DI
// name of its one handler.
type CommandRules map[Command]string

type commandRules map[string]string

func (r commandRules) Merge(rules CommandRules) (commandRules, error) {
	for cmd, handler := range rules {
		if _, exists := r[cmd.Command()]; exists {
			return r, AlreadyRegistered{cmd}
		}
		r[cmd.Command()] = handler
	}
	return r, nil
}

// EventRules is a map that determines routing for events.
// The key is a zero value of the event, and the value is an ordered
// list of DI handler names. Handlers run in the order registered.
type EventRules map[Event][]string

type eventRules map[string][]string

func (r eventRules) Merge(rules EventRules) eventRules {
	for event, handlers := range rules {
		r[event.Event()] = r.deduplicate(r[event.Event()], handlers...)
	}
	return r
}

func (eventRules) deduplicate(existing []string, handlers ...string) []string {
	merged := make([]string, len(existing))
	copy(merged, existing)
one:
	for _, h := range handlers {
		for _, e := range merged {
			if e == h {
				continue one
			}
		}
		merged = append(merged, h)
	}
	return merged
}

// NewRegistry returns a new, empty, handler registry
func NewRegistry() Registry {
	return Registry{
		events:   make(eventRules),
		commands: make(commandRules),
	}
}

// Registry is the routing table from message name to handler name(s).
// It is built once at startup and read-only during dispatch, making
// it safe for concurrent Dispatch calls.
type Registry struct {
	events   eventRules
	commands commandRules
}

// ExtendCommands merges command rules into the registry. A command
// that already has a handler is a configuration error: commands have
// exactly one handler.
func (r *Registry) ExtendCommands(rules CommandRules) error {
	merged, err := r.commands.Merge(rules)
	if err != nil {
		return err
	}
	r.commands = merged
	return nil
}

// ExtendEvents merges event rules into the registry, preserving
// registration order and dropping duplicate handlers
func (r *Registry) ExtendEvents(rules EventRules) {
	r.events = r.events.Merge(rules)
}

// RouteCommand returns the handler name for a command, if one is registered
func (r Registry) RouteCommand(cmd Command) (string, bool) {
	handler, ok := r.commands[cmd.Command()]
	return handler, ok
}

// RouteEvent returns the handler names for an event, in registration
// order. An event with no handlers routes to an empty list: that is
// not an error.
func (r Registry) RouteEvent(evt Event) []string {
	return r.events[evt.Event()]
}
