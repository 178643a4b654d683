// Package livecache is an optimistic client-side cache for collaborative
// project boards. It keeps lists and detail views of projects, tasks, todo
// items, notes, comments and project members in a local store, applies every
// write speculatively before the network round-trip, and merges realtime
// change notifications from the server feed so all connected clients
// converge on the same state.
//
// Reads go through the cache: a fresh entry is served locally, a stale or
// missing one triggers a fetch. Writes follow a three-phase protocol of
// speculative apply, remote call, then reconcile or rollback. A background
// ingestor subscribes to the server's change feed and folds INSERT, UPDATE
// and DELETE events into the cached views, including echoes of this client's
// own writes, which de-duplicate by record id and by content against
// in-flight optimistic placeholders.
package livecache
