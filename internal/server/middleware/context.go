package middleware

import "context"

type contextKey struct{ name string }

var accountIDKey = contextKey{"account_id"}

// WithAccountID returns a context carrying the authenticated account id.
// Protected handlers read it via GetAccountID.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

// GetAccountID returns the account id from context and true if set; otherwise "", false.
func GetAccountID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(accountIDKey).(string)
	return v, ok
}
