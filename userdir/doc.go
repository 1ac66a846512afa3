// Package userdir defines the credential directory consumed by the session
// engine.
//
// The [Directory] interface abstracts credential lookup and persistence; the
// engine never talks to a database directly. Implementations that support
// multi-statement writes additionally implement [UnitOfWork], which the
// engine uses for account creation and password changes so partial writes
// roll back as one unit.
//
// # What this package must NOT do
//
//   - Hash or verify passwords — it stores opaque encodings only.
//   - Import authsessions, session, or jwt (no upward imports).
package userdir
