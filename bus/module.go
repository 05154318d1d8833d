package bus

import (
	"github.com/sarulabs/di/v2"
)

// Def is a service definition registered with the bus's container.
// Handlers referenced by name in CommandRules or EventRules must have
// a Def with that name.
type Def struct {
	Name  string
	Build func(di.Container) (interface{}, error)
}

func (d Def) diDef() di.Def {
	return di.Def{Name: d.Name, Build: d.Build}
}

// Module is a self-contained area of the application, contributing
// its services and routing rules to the bus at startup
type Module interface {
	// Services returns the module's service definitions
	Services() []Def

	// Commands returns the module's command routing rules
	Commands() CommandRules

	// Events returns the module's event routing rules
	Events() EventRules
}
