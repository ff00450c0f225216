package service

import (
	"context"

	"github.com/rmaalouf/user-admin-api/internal/model"
	"github.com/rmaalouf/user-admin-api/internal/repository"
)

// HighestRole returns the role with the smallest id among the given
// set, which is the role with the highest priority. The set must be
// non-empty; an empty set fails with ErrInvalidArgument. Ties cannot
// arise for a single user (role ids are unique reference rows); if the
// input nevertheless repeats an id, the first occurrence wins.
func HighestRole(roles []model.Role) (model.Role, error) {
	if len(roles) == 0 {
		return model.Role{}, ErrInvalidArgument
	}
	highest := roles[0]
	for _, role := range roles[1:] {
		if role.ID < highest.ID {
			highest = role
		}
	}
	return highest, nil
}

// AccessService decides whether one user may change another user's role
// set. It is stateless: callers re-invoke it immediately before each
// mutation because role sets can change between check and use.
type AccessService struct {
	Roles *repository.RoleRepo
}

func NewAccessService(roles *repository.RoleRepo) *AccessService {
	return &AccessService{Roles: roles}
}

// CanUpdateRoles returns nil only when the actor's highest role
// strictly outranks the target's (a smaller role id wins). A user with
// no roles, actor or target, fails with ErrNotFound; equal rank fails
// with ErrNotAllowed. Super-admins therefore cannot edit each other.
func (s *AccessService) CanUpdateRoles(ctx context.Context, actorID, targetID uint64) error {
	actorRoles, err := s.Roles.ListByUser(ctx, actorID)
	if err != nil {
		return err
	}
	targetRoles, err := s.Roles.ListByUser(ctx, targetID)
	if err != nil {
		return err
	}
	actorHighest, err := HighestRole(actorRoles)
	if err != nil {
		return ErrNotFound
	}
	targetHighest, err := HighestRole(targetRoles)
	if err != nil {
		return ErrNotFound
	}
	if actorHighest.ID >= targetHighest.ID {
		return ErrNotAllowed
	}
	return nil
}
