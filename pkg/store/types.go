package store

// Mutation describes a committed state change.
type Mutation struct {
	Type    string
	Payload any
}

// MutationHandler applies a mutation payload to state. Handlers mutate the
// state they receive in place.
type MutationHandler func(state map[string]any, payload any)

// Subscriber observes every committed mutation together with the state after
// the commit.
type Subscriber func(mutation Mutation, state map[string]any)

// Module bundles mutation handlers registered under a name.
type Module struct {
	Mutations map[string]MutationHandler
}
