package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/policy"
	"github.com/ariebrainware/medibook/repository"
	"github.com/ariebrainware/medibook/util"
	"go.uber.org/zap"
)

// TokenType is the scheme returned to clients.
const TokenType = "bearer"

// IdentityService manages accounts, credentials and bearer tokens.
type IdentityService struct {
	store  repository.Store
	tokens *util.TokenIssuer
}

func NewIdentityService(store repository.Store, tokens *util.TokenIssuer) *IdentityService {
	return &IdentityService{store: store, tokens: tokens}
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Role            model.Role
	ProfilePicture  *string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a Patient or Doctor account. The username defaults to the e-mail address.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = email
	}
	role := in.Role
	if role == "" {
		role = model.RolePatient
	}
	if !role.Valid() {
		return nil, util.NewValidationError("invalid_role", "role must be one of Patient, Doctor, Admin")
	}
	if role == model.RoleAdmin {
		return nil, ErrAdminSelfRegister
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	users := s.store.Users()
	taken, err := users.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, internal(err)
	}
	if taken {
		return nil, ErrEmailTaken
	}
	if taken, err = users.UsernameTaken(ctx, username, 0); err != nil {
		return nil, internal(err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, internal(err)
	}
	user := &model.User{
		Username:       username,
		Email:          email,
		Password:       hash,
		FirstName:      util.NormalizeName(in.FirstName),
		LastName:       util.NormalizeName(in.LastName),
		Role:           role,
		ProfilePicture: in.ProfilePicture,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, internal(err)
	}
	return user, nil
}

// Authenticate checks credentials. Unknown identifiers and wrong passwords fail identically;
// a supplied role that differs from the user's fails with ErrRoleMismatch.
func (s *IdentityService) Authenticate(ctx context.Context, identifier, password string, role model.Role) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		identifier = normalizeEmail(identifier)
	}

	user, err := s.store.Users().GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_, _ = util.VerifyPassword(password, util.DummyPasswordHash())
			return nil, ErrInvalidCredentials
		}
		return nil, internal(err)
	}

	ok, err := util.VerifyPassword(password, user.Password)
	if err != nil {
		util.Logger().Warn("stored password hash is malformed", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if role != "" && role != user.Role {
		return nil, ErrRoleMismatch
	}
	if user.Disabled {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

// IssueToken signs a token for user and tracks it for bulk revocation.
func (s *IdentityService) IssueToken(ctx context.Context, user *model.User) (Token, error) {
	signed, claims, err := s.tokens.Issue(*user)
	if err != nil {
		return Token{}, internal(err)
	}
	if err := util.TrackSession(ctx, user.ID, claims.ID, s.tokens.TTL()); err != nil {
		util.Logger().Warn("failed to track session", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return Token{AccessToken: signed, TokenType: TokenType, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Login authenticates and issues a token in one step.
func (s *IdentityService) Login(ctx context.Context, identifier, password string, role model.Role) (Token, *model.User, error) {
	user, err := s.Authenticate(ctx, identifier, password, role)
	if err != nil {
		return Token{}, nil, err
	}
	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return Token{}, nil, err
	}
	return token, user, nil
}

// VerifyToken validates signature and expiry without touching storage.
func (s *IdentityService) VerifyToken(token string) (*util.Claims, error) {
	claims, err := s.tokens.Verify(token)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, util.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, util.ErrSigningKeyMissing):
		return nil, internal(err)
	default:
		return nil, ErrTokenInvalid.Wrap(err)
	}
}

// ResolveCaller turns a bearer token into the request's caller. Role and disabled state
// come from the stored user, so changes apply before the token expires.
func (s *IdentityService) ResolveCaller(ctx context.Context, token string) (policy.Caller, *util.Claims, error) {
	claims, err := s.VerifyToken(token)
	if err != nil {
		return policy.Caller{}, nil, err
	}
	revoked, err := util.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		util.Logger().Warn("revocation check failed", zap.String("jti", claims.ID), zap.Error(err))
	}
	if revoked {
		return policy.Caller{}, nil, ErrTokenRevoked
	}

	user, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return policy.Caller{}, nil, ErrTokenInvalid
		}
		return policy.Caller{}, nil, err
	}
	return policy.CallerFromUser(user), claims, nil
}

func (s *IdentityService) loadUser(ctx context.Context, id uint) (model.User, error) {
	if u, ok := util.UserCacheGet(id); ok {
		return u, nil
	}
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return model.User{}, notFound(err, ErrUserNotFound)
	}
	util.UserCacheSet(*u)
	return *u, nil
}

// Logout revokes the presented token until it would have expired.
func (s *IdentityService) Logout(ctx context.Context, claims *util.Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := util.RevokeToken(ctx, claims.UserID, claims.ID, ttl); err != nil {
		return internal(err)
	}
	return nil
}

func (s *IdentityService) GetUser(ctx context.Context, caller policy.Caller, id uint) (*model.User, error) {
	if err := policy.Require(caller, policy.OpUsersRead, id); err != nil {
		return nil, err
	}
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return u, nil
}

func (s *IdentityService) ListUsers(ctx context.Context, caller policy.Caller, opts repository.ListOptions) ([]model.User, int64, error) {
	if err := policy.Require(caller, policy.OpUsersList); err != nil {
		return nil, 0, err
	}
	users, total, err := s.store.Users().List(ctx, opts)
	if err != nil {
		return nil, 0, internal(err)
	}
	return users, total, nil
}

// UpdateUserInput carries the fields to change; nil fields are left alone.
type UpdateUserInput struct {
	FirstName      *string
	LastName       *string
	Email          *string
	ProfilePicture *string
	Password       *string
}

// UpdateUser applies in to the user. A password change revokes every session of the user.
// The second return value reports whether the password changed.
func (s *IdentityService) UpdateUser(ctx context.Context, caller policy.Caller, id uint, in UpdateUserInput) (*model.User, bool, error) {
	if err := policy.Require(caller, policy.OpUsersUpdate, id); err != nil {
		return nil, false, err
	}
	users := s.store.Users()
	user, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, false, notFound(err, ErrUserNotFound)
	}

	if in.FirstName != nil {
		user.FirstName = util.NormalizeName(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = util.NormalizeName(*in.LastName)
	}
	if in.ProfilePicture != nil {
		user.ProfilePicture = in.ProfilePicture
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		taken, err := users.EmailTaken(ctx, email, user.ID)
		if err != nil {
			return nil, false, internal(err)
		}
		if taken {
			return nil, false, ErrEmailTaken
		}
		user.Email = email
	}
	passwordChanged := false
	if in.Password != nil {
		hash, err := util.HashPassword(*in.Password)
		if err != nil {
			return nil, false, internal(err)
		}
		user.Password = hash
		passwordChanged = true
	}

	if err := users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, false, ErrEmailTaken
		}
		return nil, false, internal(err)
	}
	util.UserCacheInvalidate(user.ID)

	if passwordChanged {
		if err := util.RevokeUserSessions(ctx, user.ID, s.tokens.TTL()); err != nil {
			util.Logger().Warn("failed to revoke sessions", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}
	return user, passwordChanged, nil
}

// SetDisabled enables or disables an account. Disabling revokes every session of the user.
func (s *IdentityService) SetDisabled(ctx context.Context, caller policy.Caller, id uint, disabled bool) (*model.User, error) {
	if err := policy.Require(caller, policy.OpUsersDisable); err != nil {
		return nil, err
	}
	if disabled && caller.ID == id {
		return nil, ErrDisableSelf
	}
	users := s.store.Users()
	user, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	user.Disabled = disabled
	if err := users.Update(ctx, user); err != nil {
		return nil, internal(err)
	}
	util.UserCacheInvalidate(user.ID)

	if disabled {
		if err := util.RevokeUserSessions(ctx, user.ID, s.tokens.TTL()); err != nil {
			util.Logger().Warn("failed to revoke sessions", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}
	return user, nil
}
