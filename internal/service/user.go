package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/gamehub/station-server-go/internal/database"
	apperrors "github.com/gamehub/station-server-go/internal/errors"
	"github.com/gamehub/station-server-go/internal/model"
	"github.com/gamehub/station-server-go/internal/repository"
	"github.com/gamehub/station-server-go/internal/util"
)

const (
	maxUsernameLength = 150
	minPasswordLength = 8
	usernameIndex     = "users_username_key"
)

type RegisterInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresIn int         `json:"expires_in"` // seconds
	User      *model.User `json:"user"`
}

type UserService struct {
	tx          TxRunner
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	tokens      *TokenService
}

func NewUserService(
	tx TxRunner,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	tokens *TokenService,
) *UserService {
	return &UserService{
		tx:          tx,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
	}
}

func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !user.IsActive || !util.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.Unauthorized("Invalid username or password")
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &LoginResult{Token: token, ExpiresIn: int(s.tokens.ExpiresIn().Seconds()), User: user}, nil
}

// Register creates a player account. Staff and admin accounts are created by admins.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	input.Username = strings.TrimSpace(input.Username)

	fields := map[string]string{}
	validateUsername(fields, input.Username)
	validatePassword(fields, input.Password)
	if len(fields) > 0 {
		return nil, apperrors.FieldErrors(fields)
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, model.CreateUserParams{
		Username:     input.Username,
		PasswordHash: hash,
		Firstname:    strings.TrimSpace(input.Firstname),
		Lastname:     strings.TrimSpace(input.Lastname),
		Role:         model.RolePlayer,
	})
	if err != nil {
		if database.IsUniqueViolation(err, usernameIndex) {
			return nil, apperrors.AlreadyExists("Username")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Info().Str("userId", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Authenticate resolves the active user behind a verified token.
func (s *UserService) Authenticate(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperrors.InvalidToken("User no longer exists")
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	users, err := s.userRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, total, nil
}

// Get returns a user visible to actor: admins see everyone, others only themselves.
func (s *UserService) Get(ctx context.Context, actor model.Actor, id string) (*model.User, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return nil, apperrors.Forbidden("You can only view your own account")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}
	return user, nil
}

// Update applies patch. Only admins may edit other users or change roles.
func (s *UserService) Update(ctx context.Context, actor model.Actor, id string, patch model.UserPatch) (*model.User, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return nil, apperrors.Forbidden("You can only edit your own account")
	}
	if patch.Role != nil && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Only admins can change roles")
	}

	fields := map[string]string{}
	params := model.UpdateUserParams{Role: patch.Role}
	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		validateUsername(fields, username)
		params.Username = &username
	}
	if patch.Password != nil {
		validatePassword(fields, *patch.Password)
	}
	if patch.Role != nil && !patch.Role.Valid() {
		fields["role"] = "must be one of player, staff, admin"
	}
	if len(fields) > 0 {
		return nil, apperrors.FieldErrors(fields)
	}

	if patch.Password != nil {
		hash, err := util.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		params.PasswordHash = &hash
	}

	var user *model.User
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		userRepo := s.userRepo.WithTx(tx)

		// A player holding a station must stay a player until the session closes.
		if patch.Role != nil && *patch.Role != model.RolePlayer {
			if err := s.ensureNoActiveSession(ctx, tx, id); err != nil {
				return err
			}
		}

		updated, err := userRepo.Update(ctx, id, params)
		if err != nil {
			if database.IsUniqueViolation(err, usernameIndex) {
				return apperrors.AlreadyExists("Username")
			}
			return fmt.Errorf("update user: %w", err)
		}
		if updated == nil {
			return apperrors.NotFound("User")
		}
		user = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("userId", user.ID).
		Str("role", string(user.Role)).
		Str("updatedBy", actor.UserID).
		Msg("user updated")

	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if actor.UserID == id {
		return apperrors.Conflict("You cannot delete your own account")
	}
	// An active session must be closed before its player is deleted.
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.ensureNoActiveSession(ctx, tx, id); err != nil {
			return err
		}
		ok, err := s.userRepo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if !ok {
			return apperrors.NotFound("User")
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("userId", id).Str("deletedBy", actor.UserID).Msg("user deleted")
	return nil
}

// ensureNoActiveSession locks the user row, serialising with Open, and rejects a
// player that currently holds a station.
func (s *UserService) ensureNoActiveSession(ctx context.Context, tx *sqlx.Tx, id string) error {
	user, err := s.userRepo.WithTx(tx).FindByIDForUpdate(ctx, id)
	if err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	if user == nil {
		return apperrors.NotFound("User")
	}
	if user.Role != model.RolePlayer {
		return nil
	}
	active, err := s.sessionRepo.WithTx(tx).CountActiveByPlayer(ctx, id)
	if err != nil {
		return fmt.Errorf("count active sessions: %w", err)
	}
	if active > 0 {
		return apperrors.Conflict("User has an active session; close it first")
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (s *UserService) EnsureAdmin(ctx context.Context, username, passwordHash string) error {
	if username == "" || passwordHash == "" {
		return nil
	}
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("find admin: %w", err)
	}
	if existing != nil {
		if existing.Role != model.RoleAdmin {
			log.Warn().Str("username", username).Str("role", string(existing.Role)).Msg("bootstrap admin username belongs to a non-admin user")
		}
		return nil
	}

	user, err := s.userRepo.Create(ctx, model.CreateUserParams{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Info().Str("userId", user.ID).Str("username", username).Msg("bootstrap admin created")
	return nil
}

func validateUsername(fields map[string]string, username string) {
	switch {
	case username == "":
		fields["username"] = "is required"
	case len(username) > maxUsernameLength:
		fields["username"] = fmt.Sprintf("must be at most %d characters", maxUsernameLength)
	}
}

func validatePassword(fields map[string]string, password string) {
	if len(password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("must be at least %d characters", minPasswordLength)
	}
}
