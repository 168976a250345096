// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"codeberg.org/nexastore/nexastore/internal/apperr"
)

// Resource is the kind of object an action targets.
type Resource string

const (
	ResourceUser    Resource = "user"
	ResourceProduct Resource = "product"
)

// Action is an operation on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	// ActionUpdatePrivileged changes role or activation state.
	ActionUpdatePrivileged Action = "update_privileged"
	ActionDelete           Action = "delete"
)

// Target identifies the object of an action. OwnerID is the owning user's ID
// for user resources and empty otherwise.
type Target struct {
	Resource Resource
	OwnerID  string
}

// UserTarget targets the user with the given ID.
func UserTarget(id string) Target {
	return Target{Resource: ResourceUser, OwnerID: id}
}

// ProductTarget targets the product catalog.
func ProductTarget() Target {
	return Target{Resource: ResourceProduct}
}

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  apperr.Kind // why the action was denied
}

// Err returns nil for an allowed decision and a typed error otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperr.New(d.Reason)
}

func allow() Decision                  { return Decision{Allowed: true} }
func deny(reason apperr.Kind) Decision { return Decision{Reason: reason} }

// Authorize decides whether actor may perform action on target. A nil actor
// is an anonymous caller.
func Authorize(actor *Identity, target Target, action Action) Decision {
	switch target.Resource {
	case ResourceProduct:
		return authorizeProduct(actor, action)
	case ResourceUser:
		return authorizeUser(actor, target.OwnerID, action)
	}
	return deny(apperr.InsufficientPermissions)
}

func authorizeProduct(actor *Identity, action Action) Decision {
	switch action {
	case ActionRead, ActionList:
		return allow()
	case ActionCreate, ActionUpdate, ActionDelete:
		if actor == nil {
			return deny(apperr.AuthenticationRequired)
		}
		if actor.IsAdmin() {
			return allow()
		}
	}
	return deny(apperr.InsufficientPermissions)
}

func authorizeUser(actor *Identity, ownerID string, action Action) Decision {
	if actor == nil {
		return deny(apperr.AuthenticationRequired)
	}
	self := ownerID != "" && actor.UserID == ownerID

	switch action {
	case ActionRead, ActionUpdate:
		if self || actor.IsAdmin() {
			return allow()
		}
	case ActionList, ActionCreate, ActionUpdatePrivileged:
		if actor.IsAdmin() {
			return allow()
		}
	case ActionDelete:
		if !actor.IsAdmin() {
			return deny(apperr.InsufficientPermissions)
		}
		if self {
			return deny(apperr.CannotDeleteSelf)
		}
		return allow()
	}
	return deny(apperr.InsufficientPermissions)
}
