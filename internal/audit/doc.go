// Package audit provides structured audit events for session lifecycle
// operations and an asynchronous dispatcher that forwards them to a sink.
//
// Events are emitted off the request path: the dispatcher buffers them in a
// channel and a single goroutine delivers them, so a slow sink can never
// block a login or refresh call.
//
// # What this package must NOT do
//
//   - Import authsessions or any sibling package.
//   - Block an Engine operation on sink delivery.
package audit
