package bus

type Config = func(*Bus) error

// UseUnitOfWork provides the storage layer's unit of work factory
// for the bus to scope handler invocations with
func UseUnitOfWork(factory UnitOfWorkFactory) Config {
	return func(b *Bus) error {
		b.uow = factory
		return nil
	}
}

// WithRetry sets the retry policy applied to event handlers
func WithRetry(policy RetryPolicy) Config {
	return func(b *Bus) error {
		b.retry = policy
		return nil
	}
}

// WithBudget caps how many messages one dispatch call may process
// before failing with CascadeOverflow
func WithBudget(budget int) Config {
	return func(b *Bus) error {
		b.budget = budget
		return nil
	}
}
