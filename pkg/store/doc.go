// Package store defines the host store contract consumed by the persistence
// plugin (mutations, modules, subscribers) and ships a small synchronous
// reactive store implementing it, used by tests, examples and applications
// that do not bring their own.
package store
