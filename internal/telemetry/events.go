// Package telemetry emits authentication events as OpenTelemetry log records.
package telemetry

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Auth event actions recorded by the emitter.
const (
	ActionSignup         = "signup"
	ActionLoginSuccess   = "login_success"
	ActionLoginFailure   = "login_failure"
	ActionFederatedLogin = "federated_login"
)

// AuthEvent describes one authentication-flow outcome. AccountID may be empty
// (e.g. login_failure for an unknown email is recorded without an account).
type AuthEvent struct {
	AccountID string
	Email     string
	Action    string
	Provider  string
	At        time.Time
}

// AuthEventEmitter records authentication events. Emit is best-effort: it must
// never fail the authentication flow that produced the event.
type AuthEventEmitter interface {
	Emit(ctx context.Context, e AuthEvent)
}

// NewAuthEventEmitter returns an emitter that writes events as OTel log records
// via the given LoggerProvider. A nil provider yields a no-op emitter.
func NewAuthEventEmitter(provider *sdklog.LoggerProvider) AuthEventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("meajuda.auth")}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, AuthEvent) {}

type otelEmitter struct {
	logger otellog.Logger
}

func (e *otelEmitter) Emit(ctx context.Context, event AuthEvent) {
	rec := otellog.Record{}
	at := event.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	rec.SetTimestamp(at)
	rec.SetBody(otellog.StringValue(event.Action))
	rec.AddAttributes(otellog.String("action", event.Action))
	if event.AccountID != "" {
		rec.AddAttributes(otellog.String("account_id", event.AccountID))
	}
	if event.Email != "" {
		rec.AddAttributes(otellog.String("email", event.Email))
	}
	if event.Provider != "" {
		rec.AddAttributes(otellog.String("provider", event.Provider))
	}
	e.logger.Emit(ctx, rec)
}
