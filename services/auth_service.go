package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"civicconnect-be/accesscode"
	"civicconnect-be/models"
	"civicconnect-be/policy"
	"civicconnect-be/repository"
	authUtils "civicconnect-be/utils"
)

const minPasswordLength = 6

// SignUpInput mirrors the citizen and authority registration forms.
type SignUpInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	DisplayName     string
	Role            string
	AccessCode      string
}

// AuthService plays the session and identity provider: it registers
// identities, issues and revokes session tokens and resolves the viewer
// behind a token.
type AuthService struct {
	users    repository.UserStore
	profiles repository.ProfileStore
	codes    accesscode.Validator
	tokens   *authUtils.TokenManager
	revoked  authUtils.RevocationList
	log      *slog.Logger
}

func NewAuthService(
	users repository.UserStore,
	profiles repository.ProfileStore,
	codes accesscode.Validator,
	tokens *authUtils.TokenManager,
	revoked authUtils.RevocationList,
	logger *slog.Logger,
) *AuthService {
	if codes == nil {
		codes = accesscode.Disabled{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:    users,
		profiles: profiles,
		codes:    codes,
		tokens:   tokens,
		revoked:  revoked,
		log:      logger,
	}
}

// SignUp registers a citizen or an authority. Authority registration is
// gated on the access code; a rejected code creates nothing.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*models.User, policy.Role, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, policy.RoleAnonymous, invalid("email", "email is required")
	}
	if in.Password != in.ConfirmPassword {
		return nil, policy.RoleAnonymous, invalid("confirm_password", "Passwords do not match")
	}
	if len(in.Password) < minPasswordLength {
		return nil, policy.RoleAnonymous, invalid("password", "Password must be at least 6 characters")
	}

	role := policy.RoleCitizen
	if strings.TrimSpace(in.Role) != "" {
		parsed, ok := policy.ParseRole(in.Role)
		if !ok || parsed == policy.RoleAdmin {
			return nil, policy.RoleAnonymous, invalid("role", "role must be citizen or authority")
		}
		role = parsed
	}

	if role == policy.RoleAuthority {
		code := strings.TrimSpace(in.AccessCode)
		if code == "" {
			return nil, policy.RoleAnonymous, invalid("access_code", "Authority access code is required")
		}
		ok, err := s.codes.Validate(ctx, code, email)
		if err != nil {
			s.log.Warn("authority code validation failed", "email", email, "error", err)
			return nil, policy.RoleAnonymous, ErrAuthorizationDenied
		}
		if !ok {
			return nil, policy.RoleAnonymous, ErrAuthorizationDenied
		}
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	user := &models.User{Email: email, DisplayName: displayName, Password: in.Password}
	if err := user.HashPassword(); err != nil {
		return nil, policy.RoleAnonymous, remote("hash password", err)
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, policy.RoleAnonymous, err
		}
		return nil, policy.RoleAnonymous, remote("create user", err)
	}

	profile := &models.Profile{UserID: user.ID, DisplayName: displayName, Role: role.String()}
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		return nil, policy.RoleAnonymous, remote("create profile", err)
	}

	s.log.Info("user registered", "user_id", user.ID, "role", role.String())
	return user, role, nil
}

// SignIn checks the password and issues a session token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", remote("find user", err)
	}
	if !user.ComparePassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", remote("sign token", err)
	}
	return user, token, nil
}

// SignOut revokes token for the rest of its lifetime.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	session, err := s.tokens.Parse(token)
	if err != nil {
		return ErrAuthenticationRequired
	}
	if err := s.revoked.Revoke(ctx, session.TokenID, time.Until(session.ExpiresAt)); err != nil {
		return remote("revoke token", err)
	}
	return nil
}

// Resolve turns a bearer token into the viewer for one request.
func (s *AuthService) Resolve(ctx context.Context, token string) (policy.Viewer, error) {
	session, err := s.tokens.Parse(token)
	if err != nil {
		return policy.Anonymous(), ErrAuthenticationRequired
	}
	revoked, err := s.revoked.IsRevoked(ctx, session.TokenID)
	if err != nil {
		return policy.Anonymous(), remote("check session", err)
	}
	if revoked {
		return policy.Anonymous(), ErrAuthenticationRequired
	}
	return s.Viewer(ctx, session.UserID), nil
}

// Viewer looks up the role claim for userID. A missing profile, an
// unreadable role or a failed lookup all fall back to citizen.
func (s *AuthService) Viewer(ctx context.Context, userID string) policy.Viewer {
	if userID == "" {
		return policy.Anonymous()
	}
	claim, err := s.profiles.GetRole(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrProfileNotFound) {
			s.log.Warn("role lookup failed, defaulting to citizen", "user_id", userID, "error", err)
		}
		return policy.NewViewer(userID, policy.RoleCitizen)
	}
	role, ok := policy.ParseRole(claim)
	if !ok {
		s.log.Warn("unknown role claim, defaulting to citizen", "user_id", userID, "role", claim)
		role = policy.RoleCitizen
	}
	return policy.NewViewer(userID, role)
}

// CurrentUser returns the identity record behind viewer.
func (s *AuthService) CurrentUser(ctx context.Context, viewer policy.Viewer) (*models.User, error) {
	if viewer.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}
	user, err := s.users.FindUserByID(ctx, viewer.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAuthenticationRequired
		}
		return nil, remote("find user", err)
	}
	return user, nil
}

// TokenTTL is the lifetime of tokens issued by SignIn.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
