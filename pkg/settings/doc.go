// Package settings is a scoped key/value preference store.
//
// Snapshots are stored per (namespace, scope). Two scopes exist: a system
// scope holding device defaults and a user scope keyed by user id. Reads
// layer the user snapshot over the system snapshot, so a key set for the
// user wins over the device default and a missing key falls back to the
// caller-provided default.
//
// Data flow:
//
//	Store -> Resolver.Resolve(user, system) -> Snapshot -> SystemSettings.ReadInt*
//
// Deterministic keys:
//
//	Ref.Identifier() yields `system/<namespace>` or `user/<id>/<namespace>`
//	and is what MemoryStore uses as its map key.
//
// SystemSettings implements powermenu.PreferenceStore on top of a Store and
// a UserTracker, and emits activity events for every write.
package settings
