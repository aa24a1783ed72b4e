package service

import (
	"context"

	"authz/internal/model"
)

// accessGate is embedded by the business services: every operation funnels
// through the permission evaluator before touching the store. The gate never
// reveals whether a denied object exists.
type accessGate struct {
	perms PermissionService
}

func (g accessGate) check(ctx context.Context, caller *model.User, resource string, action model.Action, isOwner bool) error {
	allowed, err := g.perms.Authorize(ctx, caller.ID, resource, action, isOwner)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrPermissionDenied
	}
	return nil
}

// listScope decides how a caller may list a resource: full when the caller
// holds read_all, own-rows-only when only the plain read grant holds,
// otherwise denied.
type listScope int

const (
	scopeNone listScope = iota
	scopeOwn
	scopeAll
)

func (g accessGate) scopeFor(ctx context.Context, caller *model.User, resource string) (listScope, error) {
	all, err := g.perms.Authorize(ctx, caller.ID, resource, model.ActionRead, false)
	if err != nil {
		return scopeNone, err
	}
	if all {
		return scopeAll, nil
	}
	own, err := g.perms.Authorize(ctx, caller.ID, resource, model.ActionRead, true)
	if err != nil {
		return scopeNone, err
	}
	if own {
		return scopeOwn, nil
	}
	return scopeNone, nil
}
