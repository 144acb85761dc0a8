package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// UserService manages operator accounts
type UserService struct {
	userRepo   identity.UserRepository
	guard      *AccessGuard
	blacklist  auth.TokenBlacklist
	sessionTTL time.Duration // Lifetime of issued tokens; bounds user revocations
	logger     *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo identity.UserRepository,
	guard *AccessGuard,
	blacklist auth.TokenBlacklist,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		guard:      guard,
		blacklist:  blacklist,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, actor identity.Actor, req CreateUserRequest) (*UserResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleUsers, ActionWrite); err != nil {
		return nil, err
	}

	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewAlreadyExistsError("username", req.Username)
	}

	user, err := identity.NewUser(req.Username, req.Password, role)
	if err != nil {
		return nil, err
	}
	if req.Email != "" || req.Phone != "" {
		if err := user.SetContact(req.Email, req.Phone); err != nil {
			return nil, err
		}
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()),
		zap.String("by", actor.UserID.String()))

	response := ToUserResponse(user)
	return &response, nil
}

// GetByID retrieves a user
func (s *UserService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*UserResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleUsers, ActionRead); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// List lists users ordered by username
func (s *UserService) List(ctx context.Context, actor identity.Actor, filter UserListFilter) ([]UserResponse, int64, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleUsers, ActionRead); err != nil {
		return nil, 0, err
	}

	domainFilter := shared.DefaultFilter()
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Role != "" {
		domainFilter.Filters["role"] = filter.Role
	}

	users, err := s.userRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.userRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	return responses, total, nil
}

// Update changes contact details, role or password. A role or password
// change revokes every token the user holds.
func (s *UserService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleUsers, ActionWrite); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil || req.Phone != nil {
		email, phone := user.Email, user.Phone
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if err := user.SetContact(email, phone); err != nil {
			return nil, err
		}
	}

	revoke := false
	if req.Role != nil {
		role, err := identity.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		revoke = revoke || role != user.Role
		if err := user.ChangeRole(role); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, err
		}
		revoke = true
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if revoke {
		s.revokeSessions(ctx, user.ID)
	}

	response := ToUserResponse(user)
	return &response, nil
}

// Delete removes a user and revokes their tokens
func (s *UserService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleUsers, ActionWrite); err != nil {
		return err
	}
	if id == actor.UserID {
		return shared.NewInvariantViolationError("users cannot delete their own account")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.revokeSessions(ctx, id)
	s.logger.Info("User deleted", zap.String("user_id", id.String()), zap.String("by", actor.UserID.String()))
	return nil
}

// revokeSessions failures are logged: the user row is already committed
func (s *UserService) revokeSessions(ctx context.Context, userID uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.RevokeUser(ctx, userID.String(), s.sessionTTL); err != nil {
		s.logger.Error("Failed to revoke user sessions", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
