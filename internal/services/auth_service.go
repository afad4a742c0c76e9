package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hirehub/server/internal/auth"
	"github.com/hirehub/server/internal/models"
	"github.com/hirehub/server/internal/oauth"
	"github.com/hirehub/server/internal/repository"
	appErr "github.com/hirehub/server/pkg/errors"
	"github.com/hirehub/server/pkg/logger"
	"github.com/hirehub/server/pkg/utils"
)

// BadCredentialsMessage is the only message local login failures expose.
const BadCredentialsMessage = "email or password is incorrect"

// OnboardingInput carries the profile fields collected after signup.
type OnboardingInput struct {
	DisplayName string
	Nickname    string
	Phone       string
	Dob         string
	Gender      string
	Education   string
	CareerLevel string
	Position    string
	Address     string
	Region      string
}

// AuthService unifies local and identity-provider credentials into user records.
type AuthService interface {
	SignupLocal(ctx context.Context, email, password string) (*models.User, error)
	AuthenticateLocal(ctx context.Context, email, password string) (*models.User, error)
	// ResolveExternal finds or creates the user behind a provider profile.
	// created is true when a row was inserted.
	ResolveExternal(ctx context.Context, profile oauth.Profile) (u *models.User, created bool, err error)
	WithdrawByEmail(ctx context.Context, email string) (bool, error)
	Onboard(ctx context.Context, email string, in OnboardingInput) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	IssueToken(u *models.User) (string, error)
	// Principal resolves a verified token to the principal of its user.
	// Withdrawn users resolve to Anonymous.
	Principal(ctx context.Context, id auth.Identity) auth.Principal
}

type authService struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	tokens *auth.TokenManager
}

func NewAuthService(users repository.UserRepository, hasher auth.PasswordHasher, tokens *auth.TokenManager) AuthService {
	return &authService{users: users, hasher: hasher, tokens: tokens}
}

var (
	_ AuthService   = (*authService)(nil)
	_ auth.Resolver = (*authService)(nil)
)

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) SignupLocal(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, appErr.New(appErr.CodeInvalid, "email and password are required")
	}
	logger.L().Info("local signup", zap.String("email", email))

	var existing models.User
	err := s.users.GetByEmail(ctx, email, &existing)
	if err == nil {
		return nil, appErr.New(appErr.CodeDuplicateEmail, "email already registered")
	}
	if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
	}
	u := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Provider:     models.ProviderLocal,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if appErr.IsCode(err, appErr.CodeConflict) {
			return nil, appErr.Wrap(err, appErr.CodeDuplicateEmail, "email already registered")
		}
		return nil, err
	}
	return u, nil
}

func (s *authService) AuthenticateLocal(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	if err := s.users.GetActiveByEmail(ctx, NormalizeEmail(email), &u); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, appErr.New(appErr.CodeBadCredentials, BadCredentialsMessage)
		}
		return nil, err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, appErr.New(appErr.CodeBadCredentials, BadCredentialsMessage)
	}
	return &u, nil
}

func (s *authService) ResolveExternal(ctx context.Context, profile oauth.Profile) (*models.User, bool, error) {
	email := NormalizeEmail(profile.Email())
	if email == "" {
		logger.L().Warn("provider profile without email",
			zap.String("provider", profile.Provider),
			zap.String("external_id", profile.ExternalID()))
		return nil, false, appErr.New(appErr.CodeMissingEmail, "provider did not supply an email")
	}

	var u models.User
	err := s.users.GetByEmail(ctx, email, &u)
	switch {
	case err == nil:
		if u.IsWithdrawn() {
			return nil, false, appErr.New(appErr.CodeForbidden, "account has been withdrawn")
		}
		return &u, false, nil
	case !appErr.IsCode(err, appErr.CodeNotFound):
		return nil, false, err
	}

	hash, err := s.hasher.Hash(auth.RandomSecret(profile.Provider))
	if err != nil {
		return nil, false, appErr.Wrap(err, appErr.CodeInternal, "hash placeholder failed")
	}
	u = models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Provider:     profile.Provider,
		Name:         strings.TrimSpace(profile.Name()),
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if !appErr.IsCode(err, appErr.CodeConflict) {
			return nil, false, err
		}
		// lost a race with a concurrent first login
		var winner models.User
		if err := s.users.GetByEmail(ctx, email, &winner); err != nil {
			return nil, false, err
		}
		return &winner, false, nil
	}
	logger.L().Info("provider user created", zap.String("provider", profile.Provider), zap.Int64("user_id", u.ID))
	return &u, true, nil
}

func (s *authService) WithdrawByEmail(ctx context.Context, email string) (bool, error) {
	ok, err := s.users.Withdraw(ctx, NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	if ok {
		logger.L().Info("user withdrawn", zap.String("email", email))
	}
	return ok, nil
}

func (s *authService) Onboard(ctx context.Context, email string, in OnboardingInput) (*models.User, error) {
	email = NormalizeEmail(email)
	var u models.User
	if err := s.users.GetActiveByEmail(ctx, email, &u); err != nil {
		return nil, err
	}

	if !utils.IsBlank(in.Nickname) {
		taken, err := s.users.NicknameTaken(ctx, in.Nickname, email)
		if err != nil {
			return nil, err
		}
		if taken || in.Nickname == models.WithdrawnNickname {
			return nil, appErr.New(appErr.CodeDuplicateNickname, "nickname already in use")
		}
	}
	if !utils.IsBlank(in.Phone) {
		taken, err := s.users.PhoneTaken(ctx, in.Phone, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, appErr.New(appErr.CodeDuplicatePhone, "phone already in use")
		}
	}

	for dst, v := range map[*string]string{
		&u.Name:        in.DisplayName,
		&u.Nickname:    in.Nickname,
		&u.Phone:       in.Phone,
		&u.Dob:         in.Dob,
		&u.Gender:      in.Gender,
		&u.Education:   in.Education,
		&u.CareerLevel: in.CareerLevel,
		&u.Position:    in.Position,
		&u.Address:     in.Address,
		&u.Region:      in.Region,
	} {
		if !utils.IsBlank(v) {
			*dst = strings.TrimSpace(v)
		}
	}

	if err := s.users.Update(ctx, &u); err != nil {
		if appErr.IsCode(err, appErr.CodeConflict) {
			// a concurrent onboarding claimed the value between the check and the update
			if !utils.IsBlank(u.Phone) {
				if taken, terr := s.users.PhoneTaken(ctx, u.Phone, email); terr == nil && taken {
					return nil, appErr.Wrap(err, appErr.CodeDuplicatePhone, "phone already in use")
				}
			}
			return nil, appErr.Wrap(err, appErr.CodeDuplicateNickname, "nickname already in use")
		}
		return nil, err
	}
	return &u, nil
}

func (s *authService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.users.GetByEmail(ctx, NormalizeEmail(email), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *authService) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := s.users.GetByID(ctx, id, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *authService) IssueToken(u *models.User) (string, error) {
	return s.tokens.Issue(u.Email, u.ID)
}

func (s *authService) Principal(ctx context.Context, id auth.Identity) auth.Principal {
	var u models.User
	err := s.users.GetByEmail(ctx, NormalizeEmail(id.Email), &u)
	if err != nil {
		if appErr.CodeOf(err) != appErr.CodeNotFound {
			logger.L().Warn("principal lookup failed", zap.String("email", id.Email), zap.Error(err))
		}
		return auth.ClaimsResolver{}.Principal(ctx, id)
	}
	if u.IsWithdrawn() {
		return auth.Anonymous{}
	}
	return auth.PrincipalFor(&u)
}
