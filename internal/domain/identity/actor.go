package identity

import "github.com/google/uuid"

// Actor is the already-authenticated caller of an application operation
type Actor struct {
	UserID   uuid.UUID
	Username string
	Role     Role
}

// NewActor creates an actor from resolved authentication claims
func NewActor(userID uuid.UUID, username string, role Role) Actor {
	return Actor{
		UserID:   userID,
		Username: username,
		Role:     role,
	}
}

// CanAccess reports whether the actor's role may operate on module
func (a Actor) CanAccess(module Module) bool {
	return CanAccess(a.Role, module)
}

// SystemActor is used by internal event handlers that act on behalf of the engine
func SystemActor() Actor {
	return Actor{
		UserID:   uuid.Nil,
		Username: "system",
		Role:     RoleAdmin,
	}
}
