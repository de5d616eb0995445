package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/d2o5/webauth/model"
	"github.com/d2o5/webauth/store"
)

// RegisterMetrics carries metric IDs needed by the register flow.
type RegisterMetrics struct {
	Success   int
	Duplicate int
	Failure   int
}

// RegisterEvents carries audit event names used by the register flow.
type RegisterEvents struct {
	Registered     string
	RegisterFailed string
}

// RegisterDeps captures register-flow dependencies.
type RegisterDeps struct {
	Limits Limits

	HashPassword func(password string) (hash, salt string, err error)
	FetchUser    func(ctx context.Context, username string) (*model.PrivateUser, error)
	CreateUser   func(ctx context.Context, user *model.PrivateUser) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event, username string, success bool, err error)
	Warn      func(string, ...any)

	Metrics RegisterMetrics
	Events  RegisterEvents
	Errors  Errors
}

// RunRegister creates a new account and returns its public projection.
func RunRegister(ctx context.Context, in model.NewUserInput, deps RegisterDeps) (*model.PublicUser, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, string, bool, error) {}
	}
	if deps.HashPassword == nil || deps.FetchUser == nil || deps.CreateUser == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if !deps.Limits.checkUsername(in.Username) || !deps.Limits.checkPassword(in.Password) {
		return nil, deps.Errors.Validation
	}

	// Probe first so the common duplicate case skips the hash work.
	_, err := deps.FetchUser(ctx, in.Username)
	switch {
	case err == nil:
		deps.MetricInc(deps.Metrics.Duplicate)
		deps.EmitAudit(ctx, deps.Events.RegisterFailed, in.Username, false, deps.Errors.AccountExists)
		return nil, deps.Errors.AccountExists
	case !errors.Is(err, store.ErrUserNotFound):
		deps.MetricInc(deps.Metrics.Failure)
		return nil, fmt.Errorf("%w: %v", deps.Errors.StoreUnavailable, err)
	}

	hash, salt, err := deps.HashPassword(in.Password)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		return nil, err
	}

	user := in.Record(hash, salt)
	if err := deps.CreateUser(ctx, user); err != nil {
		// A concurrent register can still win the insert race.
		if errors.Is(err, store.ErrDuplicateUsername) {
			deps.MetricInc(deps.Metrics.Duplicate)
			deps.EmitAudit(ctx, deps.Events.RegisterFailed, in.Username, false, deps.Errors.AccountExists)
			return nil, deps.Errors.AccountExists
		}
		deps.MetricInc(deps.Metrics.Failure)
		return nil, fmt.Errorf("%w: %v", deps.Errors.StoreUnavailable, err)
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Registered, in.Username, true, nil)

	public := user.Public()
	return &public, nil
}
