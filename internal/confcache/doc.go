// Package confcache implements the debounced, persistent settings cache
// that backs the pairing subsystem.
//
// A Cache holds the entire settings store in memory, organized as named
// sections of key/value entries. Per-device sections are named by the
// device address and hold bond material (link keys) and cached metadata;
// a handful of fixed sections hold adapter-wide state. All reads and
// writes go through the in-memory store; nothing touches disk on the hot
// path.
//
// Persistence is debounced: Save arms a settle timer and returns, and the
// store is written out only after the timer fires without another Save
// arriving. Bursts of mutations therefore collapse into a single write.
// Flush persists immediately and cancels any pending countdown. The
// timer-fired write also garbage-collects stale unbonded device sections
// so the file does not grow without bound.
//
// A single mutex guards all access to the store. The mutex is not
// reentrant: callbacks passed to ForEachSection must not call back into
// the cache. Timer bookkeeping lives outside the store mutex, so arming
// the countdown never contends with readers.
//
// Mutators update only the in-memory store; callers decide when to
// schedule persistence by calling Save or Flush.
package confcache
