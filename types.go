package authsessions

import (
	"io"
	"time"

	internalaudit "github.com/joaofns/authsessions/internal/audit"
	"github.com/joaofns/authsessions/userdir"
)

// LoginResult is returned by [Engine.Login] and [Engine.RefreshToken]. The
// refresh token is a freshly generated opaque identifier, never reused across
// logins.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
}

// Credential is the directory-owned account record consumed by the engine.
type Credential = userdir.Credential

// Directory is the credential store that callers must supply to integrate
// authsessions with their user database.
type Directory = userdir.Directory

// UnitOfWork groups directory writes into one transaction. Directories that
// support it are used transactionally for account creation and password
// changes.
type UnitOfWork = userdir.UnitOfWork

// HealthStatus is an on-demand backend health result.
type HealthStatus struct {
	CacheAvailable bool
	CacheLatency   time.Duration
}

// AuditEvent is the canonical audit record emitted by the session engine.
type AuditEvent = internalaudit.Event

// AuditSink receives emitted audit events.
type AuditSink = internalaudit.Sink

// NoOpSink is an audit sink that drops every event.
type NoOpSink = internalaudit.NoOpSink

// NewChannelSink returns an audit sink backed by a buffered channel.
func NewChannelSink(buffer int) *internalaudit.ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns an audit sink that writes one JSON object per line.
func NewJSONWriterSink(w io.Writer) *internalaudit.JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
