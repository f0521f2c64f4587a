package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ratatoskr/internal/domain"
)

func DeniedText(admin string) string {
	return fmt.Sprintf("You need to contact @%s to use this bot.", admin)
}

// Access lets through the administrator and allow-listed users. Everyone
// else gets a fixed reply and the rest of the chain never runs.
type Access struct {
	next   Stage
	users  domain.UserRepository
	admin  string
	logger *zap.Logger
}

func NewAccess(next Stage, users domain.UserRepository, admin string, logger *zap.Logger) *Access {
	return &Access{
		next:   next,
		users:  users,
		admin:  admin,
		logger: orNop(logger),
	}
}

func AccessMiddleware(users domain.UserRepository, admin string, logger *zap.Logger) Middleware {
	return func(next Stage) Stage {
		return NewAccess(next, users, admin, logger)
	}
}

func (a *Access) Handle(ctx context.Context, req *domain.RequestMessage) domain.ResponseMessage {
	if !a.allowed(ctx, req) {
		a.logger.Info("access denied", requestFields(req)...)
		return domain.NewTextResponse(DeniedText(a.admin))
	}
	return a.next.Handle(ctx, req)
}

func (a *Access) allowed(ctx context.Context, req *domain.RequestMessage) bool {
	if req.Username == "" {
		return false
	}
	if req.Username == a.admin {
		return true
	}

	names, err := a.users.AllowedUsernames(ctx)
	if err != nil {
		a.logger.Warn("could not read allow-list", append(requestFields(req), zap.Error(err))...)
		return false
	}
	for _, name := range names {
		if strings.TrimPrefix(strings.TrimSpace(name), "@") == req.Username {
			return true
		}
	}
	return false
}
