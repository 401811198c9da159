package context_manager

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type nickKey struct{}
type ownerKey struct{}
type requestIDKey struct{}

// SetNickContext stores the author's nickname into context
func SetNickContext(ctx context.Context, nick string) context.Context {
	return context.WithValue(ctx, nickKey{}, strings.ToLower(nick))
}

// GetNickContext retrieves the nickname from context, "unknown" when unset
func GetNickContext(ctx context.Context) string {
	nick, ok := ctx.Value(nickKey{}).(string)
	if !ok {
		return "unknown"
	}
	return nick
}

func SetOwnerContext(ctx context.Context, owner bool) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

func IsOwner(ctx context.Context) bool {
	owner, _ := ctx.Value(ownerKey{}).(bool)
	return owner
}

// WithRequestID tags the context with a fresh id for one inbound event.
func WithRequestID(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(ctx, requestIDKey{}, id), id
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
