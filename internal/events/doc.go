// Package events provides notifications about storage activity.
//
// The persistence layer treats backups as a safety net: a failed backup is
// reported, never raised. Events are how those reports leave the layer
// without coupling it to whoever is interested in them.
//
// The primary components are:
// - StorageEvent: Describes one save, backup or prune outcome
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
