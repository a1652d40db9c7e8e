package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"nexus/internal/domain"
	"nexus/internal/pkg/logger"
	"nexus/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// unknownUserHash is compared against on logins for usernames that do not
// exist so both failure paths spend the same bcrypt work.
var unknownUserHash = sync.OnceValue(func() string {
	hash, err := HashPassword("nexus-unknown-user", bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("auth: hash unknown-user password: %v", err))
	}
	return hash
})

// Service contains the account and token logic.
type Service struct {
	users      UserRepositoryInterface
	tokens     TokenRepositoryInterface
	jwt        jwtService
	welcome    WelcomeSender
	bcryptCost int
	dummyHash  func() string
}

// AuthResult is a user with a freshly signed bearer token.
type AuthResult struct {
	User  *domain.User
	Token string
}

func NewService(users UserRepositoryInterface, tokens TokenRepositoryInterface, jwt jwtService, welcome WelcomeSender) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		jwt:        jwt,
		welcome:    welcome,
		bcryptCost: bcrypt.DefaultCost,
		dummyHash:  unknownUserHash,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	username := strings.TrimSpace(req.Username)
	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if s.welcome != nil {
		if err := s.welcome.SendWelcome(ctx, user.Username, user.Email); err != nil {
			logger.Warn().Err(err).Int64("user_id", user.ID).Msg("welcome email not queued")
		}
	}

	logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies the credentials and returns the user's current token.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			CheckPassword(s.dummyHash(), req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Logout revokes the user's token; every JWT carrying its key stops working.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.tokens.DeleteByUser(ctx, userID)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetProfile returns the user's profile, creating an empty one if missing.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Profile != nil {
		return user.Profile, nil
	}
	return s.users.UpdateProfile(ctx, userID, nil)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.UserProfile, error) {
	fields := map[string]any{}
	if req.Bio != nil {
		fields["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.DateOfBirth != nil {
		raw := strings.TrimSpace(*req.DateOfBirth)
		if raw == "" {
			fields["date_of_birth"] = nil
		} else {
			dob, err := time.Parse(dateLayout, raw)
			if err != nil {
				return nil, ErrInvalidDate
			}
			fields["date_of_birth"] = dob.UTC()
		}
	}
	return s.users.UpdateProfile(ctx, userID, fields)
}

func (s *Service) issueToken(ctx context.Context, userID int64) (string, error) {
	t, err := s.tokens.GetOrCreate(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get auth token: %w", err)
	}
	signed, err := s.jwt.GenerateToken(userID, t.Key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
