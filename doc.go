// Package persist mirrors selected paths of a reactive store's state into
// synchronous key/value storage and restores them when attached.
//
// Paths are routed into groups. Bare paths share the implicit "default"
// group; a GroupOverride gives a set of paths its own storage, key or codec.
// On every accepted mutation each group's projection of the state is merged
// over what the group already stored. Committing the reset mutation
// (DefaultResetMutationType unless configured) reverts the state to the
// snapshot captured at attach time, either completely or for a list of paths:
//
//	plugin, err := persist.New(store, persist.Config{
//		Paths: persist.Paths("count", "userInfo.name"),
//	})
//	...
//	_ = persist.Reset(store, "userInfo.name")
//
// Storage and codec failures never reach the committer. They are reported to
// the configured Logger and the plugin carries on as if nothing was stored.
package persist
