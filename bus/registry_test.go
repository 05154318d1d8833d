package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerCmd struct {
	CommandType
}

func (registerCmd) Command() string { return "test.register" }
func (registerCmd) Valid() error    { return nil }

type registeredEvt struct {
	EventType
}

func (registeredEvt) Event() string { return "test.registered" }

type renamedEvt struct {
	EventType
}

func (renamedEvt) Event() string { return "test.renamed" }

func TestRegistryRoutesCommand(t *testing.T) {
	r := NewRegistry()
	err := r.ExtendCommands(CommandRules{registerCmd{}: "register-handler"})
	require.NoError(t, err)

	handler, ok := r.RouteCommand(registerCmd{})
	assert.True(t, ok)
	assert.Equal(t, "register-handler", handler)
}

func TestRegistryRejectsSecondCommandHandler(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.ExtendCommands(CommandRules{registerCmd{}: "first"}))

	err := r.ExtendCommands(CommandRules{registerCmd{}: "second"})

	var already AlreadyRegistered
	require.True(t, errors.As(err, &already))

	handler, ok := r.RouteCommand(registerCmd{})
	assert.True(t, ok)
	assert.Equal(t, "first", handler)
}

func TestRegistryUnknownCommand(t *testing.T) {
	r := NewRegistry()

	_, ok := r.RouteCommand(registerCmd{})
	assert.False(t, ok)
}

func TestRegistryPreservesEventHandlerOrder(t *testing.T) {
	r := NewRegistry()
	r.ExtendEvents(EventRules{registeredEvt{}: {"first", "second"}})
	r.ExtendEvents(EventRules{registeredEvt{}: {"third"}})

	assert.Equal(t, []string{"first", "second", "third"}, r.RouteEvent(registeredEvt{}))
}

func TestRegistryDeduplicatesEventHandlers(t *testing.T) {
	r := NewRegistry()
	r.ExtendEvents(EventRules{registeredEvt{}: {"first", "second"}})
	r.ExtendEvents(EventRules{registeredEvt{}: {"second", "first", "third"}})

	assert.Equal(t, []string{"first", "second", "third"}, r.RouteEvent(registeredEvt{}))
}

func TestRegistryUnknownEventRoutesNowhere(t *testing.T) {
	r := NewRegistry()
	r.ExtendEvents(EventRules{registeredEvt{}: {"first"}})

	assert.Len(t, r.RouteEvent(renamedEvt{}), 0)
}
