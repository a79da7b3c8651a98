// Package activity describes state lifecycle events (restored, persisted,
// removed, reset) and fans them out to hooks such as usersink.Hook.
package activity
