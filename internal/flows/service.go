package flows

import (
	"context"

	"github.com/d2o5/webauth/model"
)

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Resolve.ValidateToken != nil
}

func (s Service) Register(ctx context.Context, in model.NewUserInput) (*model.PublicUser, error) {
	return RunRegister(ctx, in, s.deps.Register)
}

func (s Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	return RunLogin(ctx, username, password, s.deps.Login)
}

func (s Service) Resolve(ctx context.Context, tokenStr string) (*Identity, error) {
	return RunResolve(ctx, tokenStr, s.deps.Resolve)
}

func (s Service) Logout(ctx context.Context, identity *Identity) error {
	return RunLogout(ctx, identity, s.deps.Logout)
}
