package apierr

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind is one of the six RPC-visible error categories from spec §7.
type Kind int

const (
	Unauthenticated Kind = iota
	NotLeader
	Unavailable
	AlreadyExists
	NotFound
	Internal
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case NotLeader:
		return "not_leader"
	case Unavailable:
		return "unavailable"
	case AlreadyExists:
		return "already_exists"
	case NotFound:
		return "not_found"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the error type returned across every Service Façade boundary.
type Error struct {
	Kind       Kind
	Message    string
	LeaderHint string // non-empty only for Kind == NotLeader, when known
}

func (e *Error) Error() string {
	if e.Kind == NotLeader {
		if e.LeaderHint == "" {
			return "no leader elected"
		}
		return fmt.Sprintf("Not the leader. Try %s", e.LeaderHint)
	}
	return e.Message
}

// New builds a plain *Error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotLeaderError builds the exact redirect error spec §6 mandates:
// `"Not the leader. Try <host:port>"`. An empty leaderAddr means "no leader
// known", for which it returns an Unavailable error instead.
func NotLeaderError(leaderAddr string) *Error {
	if leaderAddr == "" {
		return &Error{Kind: Unavailable, Message: "no leader elected"}
	}
	return &Error{Kind: NotLeader, LeaderHint: leaderAddr}
}

// ToStatus maps an apierr.Error (or any error) to a gRPC status, the same
// translation pkg/api/server.go's handlers apply implicitly by returning
// fmt.Errorf-wrapped errors from grpc method bodies — here made explicit so
// the kind survives across the wire for pkg/client to parse.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	apiErr, ok := err.(*Error)
	if !ok {
		return status.Error(codes.Internal, err.Error())
	}
	var code codes.Code
	switch apiErr.Kind {
	case Unauthenticated:
		code = codes.Unauthenticated
	case NotLeader:
		code = codes.FailedPrecondition
	case Unavailable:
		code = codes.Unavailable
	case AlreadyExists:
		code = codes.AlreadyExists
	case NotFound:
		code = codes.NotFound
	default:
		code = codes.Internal
	}
	return status.Error(code, apiErr.Error())
}

// FromStatus recovers the Kind from a gRPC status returned by ToStatus,
// reconstructing the LeaderHint by parsing the "Try <addr>" suffix.
func FromStatus(err error) *Error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return &Error{Kind: Internal, Message: err.Error()}
	}
	msg := st.Message()
	switch st.Code() {
	case codes.Unauthenticated:
		return &Error{Kind: Unauthenticated, Message: msg}
	case codes.FailedPrecondition:
		e := &Error{Kind: NotLeader, Message: msg}
		const prefix = "Not the leader. Try "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			e.LeaderHint = msg[len(prefix):]
		}
		return e
	case codes.Unavailable:
		return &Error{Kind: Unavailable, Message: msg}
	case codes.AlreadyExists:
		return &Error{Kind: AlreadyExists, Message: msg}
	case codes.NotFound:
		return &Error{Kind: NotFound, Message: msg}
	default:
		return &Error{Kind: Internal, Message: msg}
	}
}
