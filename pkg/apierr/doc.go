/*
Package apierr defines the small, closed set of error kinds every
Messaging RPC can fail with, and the two translations that carry a kind
across the wire: to a gRPC status on the server side, and back out of
one on the client side.

# Architecture

	┌──────────────────────────── APIERR ────────────────────────────┐
	│                                                                   │
	│   pkg/facade handler returns *apierr.Error                       │
	│                     │                                             │
	│                     ▼  ToStatus(err)                              │
	│         gRPC status.Status, Kind encoded in a code + message      │
	│                     │                                             │
	│           (wire: standard gRPC status trailer)                   │
	│                     │                                             │
	│                     ▼  FromStatus(err)                            │
	│   pkg/client / pkg/rpcapi caller gets back *apierr.Error          │
	│                     │                                             │
	│        Kind == NotLeader ?  -> LeaderHint names the real leader   │
	└────────────────────────────────────────────────────────────────────┘

# Kinds

Kind is a small enum with a String() method for log output:

	Unauthenticated  — missing/invalid session token
	NotLeader        — this node isn't leader; LeaderHint carries the address
	Unavailable      — commit-wait timed out, or no quorum; safe to retry
	AlreadyExists    — e.g. CreateAccount with a taken username
	NotFound         — e.g. looking up a deleted or unknown id
	Internal         — anything else (encode/decode failure, storage error)

# Error

Error wraps a Kind with a formatted message and, for NotLeader only, a
LeaderHint string. New(kind, format, args...) builds a generic *Error;
NotLeaderError(leaderAddr) builds the NotLeader case directly, storing
leaderAddr in LeaderHint, from which Error() renders the literal
redirect string clients look for. An empty leaderAddr yields an
Unavailable error ("no leader elected") instead.

# gRPC translation

ToStatus maps each Kind to the closest-fitting codes.Code
(FailedPrecondition for NotLeader, Unavailable, AlreadyExists, NotFound,
Unauthenticated, Internal for everything else), with the error's text as
the status message; no status detail is attached, so for NotLeader the
leader address travels only inside the redirect string. FromStatus(err
error) is the inverse: it calls status.FromError itself (callers pass the
raw error straight through, never a pre-extracted *status.Status) and
rebuilds an *Error with the original Kind, parsing LeaderHint back out of
the "Not the leader. Try <addr>" message, so a pkg/client retry loop can
switch on err.Kind exactly as
if it had called the local node's facade directly instead of going over
gRPC.

# Exported surface

	type Kind int
	const (
		Unauthenticated Kind = iota
		NotLeader
		Unavailable
		AlreadyExists
		NotFound
		Internal
	)
	func (k Kind) String() string

	type Error struct {
		Kind       Kind
		Message    string
		LeaderHint string
	}
	func (e *Error) Error() string
	func New(kind Kind, format string, args ...interface{}) *Error
	func NotLeaderError(leaderAddr string) *Error
	func ToStatus(err error) error
	func FromStatus(err error) *Error
*/
package apierr
