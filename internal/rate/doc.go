// Package rate provides Redis-backed attempt limiting for login and refresh
// operations.
//
// Counters are plain Redis INCR keys with a cooldown TTL set on first
// increment, so a burst of failures locks the identifier (and optionally the
// source IP) out until the window expires. Counting is best-effort: a lost
// increment under concurrency widens the budget by one, it never blocks a
// legitimate caller forever.
package rate
