package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"nexus/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, userID int64, fields map[string]any) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) GetOrCreate(ctx context.Context, userID int64) (*domain.AuthToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthToken), args.Error(1)
}

func (m *mockTokenRepo) DeleteByUser(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(userID int64, key string) (string, error) {
	args := m.Called(userID, key)
	return args.String(0), args.Error(1)
}

type mockWelcome struct {
	mock.Mock
}

func (m *mockWelcome) SendWelcome(ctx context.Context, username, email string) error {
	return m.Called(ctx, username, email).Error(0)
}

var minCostHash = func() string {
	hash, err := HashPassword("unused", bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return hash
}()

func newTestService() (*Service, *mockUserRepo, *mockTokenRepo, *mockJWTService, *mockWelcome) {
	users := new(mockUserRepo)
	tokens := new(mockTokenRepo)
	jwtSvc := new(mockJWTService)
	welcome := new(mockWelcome)
	s := NewService(users, tokens, jwtSvc, welcome)
	s.bcryptCost = bcrypt.MinCost
	s.dummyHash = func() string { return minCostHash }
	return s, users, tokens, jwtSvc, welcome
}

func validRegister() RegisterRequest {
	return RegisterRequest{
		Username:        "neo",
		Email:           "neo@example.com",
		Password:        "followthewhiterabbit",
		PasswordConfirm: "followthewhiterabbit",
	}
}

func TestService_Register_Success(t *testing.T) {
	s, users, tokens, jwtSvc, welcome := newTestService()

	users.On("ExistsByUsername", mock.Anything, "neo").Return(false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "neo" && bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("followthewhiterabbit")) == nil
	})).Return(nil)
	tokens.On("GetOrCreate", mock.Anything, int64(1)).Return(&domain.AuthToken{UserID: 1, Key: "key-1"}, nil)
	jwtSvc.On("GenerateToken", int64(1), "key-1").Return("signed-jwt", nil)
	welcome.On("SendWelcome", mock.Anything, "neo", "neo@example.com").Return(nil)

	result, err := s.Register(context.Background(), validRegister())
	require.NoError(t, err)
	assert.Equal(t, "signed-jwt", result.Token)
	assert.Equal(t, int64(1), result.User.ID)

	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
	welcome.AssertExpectations(t)
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	s, users, _, _, welcome := newTestService()
	users.On("ExistsByUsername", mock.Anything, "neo").Return(true, nil)

	_, err := s.Register(context.Background(), validRegister())
	assert.ErrorIs(t, err, ErrUsernameTaken)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	welcome.AssertNotCalled(t, "SendWelcome", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Register_WelcomeFailureIsNotFatal(t *testing.T) {
	s, users, tokens, jwtSvc, welcome := newTestService()

	users.On("ExistsByUsername", mock.Anything, "neo").Return(false, nil)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)
	tokens.On("GetOrCreate", mock.Anything, int64(1)).Return(&domain.AuthToken{UserID: 1, Key: "k"}, nil)
	jwtSvc.On("GenerateToken", int64(1), "k").Return("signed", nil)
	welcome.On("SendWelcome", mock.Anything, "neo", "neo@example.com").Return(errors.New("queue full"))

	result, err := s.Register(context.Background(), validRegister())
	require.NoError(t, err)
	assert.Equal(t, "signed", result.Token)
}

func TestService_Login(t *testing.T) {
	hash, err := HashPassword("correct-password", bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{ID: 5, Username: "trinity", PasswordHash: hash}

	t.Run("success reuses the stored key", func(t *testing.T) {
		s, users, tokens, jwtSvc, _ := newTestService()
		users.On("GetByUsername", mock.Anything, "trinity").Return(user, nil)
		tokens.On("GetOrCreate", mock.Anything, int64(5)).Return(&domain.AuthToken{UserID: 5, Key: "stored"}, nil)
		jwtSvc.On("GenerateToken", int64(5), "stored").Return("jwt", nil)

		result, err := s.Login(context.Background(), LoginRequest{Username: "trinity", Password: "correct-password"})
		require.NoError(t, err)
		assert.Equal(t, "jwt", result.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		s, users, tokens, _, _ := newTestService()
		users.On("GetByUsername", mock.Anything, "trinity").Return(user, nil)

		_, err := s.Login(context.Background(), LoginRequest{Username: "trinity", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		tokens.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		s, users, tokens, _, _ := newTestService()
		users.On("GetByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)
		var compared int
		s.dummyHash = func() string {
			compared++
			return minCostHash
		}

		_, err := s.Login(context.Background(), LoginRequest{Username: "ghost", Password: "whatever"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, 1, compared, "unknown users still pay for a bcrypt comparison")
		tokens.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure is not masked", func(t *testing.T) {
		s, users, _, _, _ := newTestService()
		users.On("GetByUsername", mock.Anything, "trinity").Return(nil, errors.New("db down"))

		_, err := s.Login(context.Background(), LoginRequest{Username: "trinity", Password: "x"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUnknownUserHash_UsesDefaultCost(t *testing.T) {
	cost, err := bcrypt.Cost([]byte(unknownUserHash()))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
	assert.False(t, CheckPassword(unknownUserHash(), ""))
}

func TestService_Logout(t *testing.T) {
	s, _, tokens, _, _ := newTestService()
	tokens.On("DeleteByUser", mock.Anything, int64(9)).Return(nil)

	require.NoError(t, s.Logout(context.Background(), 9))
	tokens.AssertExpectations(t)
}

func TestService_UpdateProfile(t *testing.T) {
	bio := "  I know kung fu  "
	dob := "1999-03-31"

	s, users, _, _, _ := newTestService()
	want := map[string]any{
		"bio":           "I know kung fu",
		"date_of_birth": time.Date(1999, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	users.On("UpdateProfile", mock.Anything, int64(3), want).Return(&domain.UserProfile{UserID: 3}, nil)

	_, err := s.UpdateProfile(context.Background(), 3, UpdateProfileRequest{Bio: &bio, DateOfBirth: &dob})
	require.NoError(t, err)
	users.AssertExpectations(t)

	bad := "31/03/1999"
	_, err = s.UpdateProfile(context.Background(), 3, UpdateProfileRequest{DateOfBirth: &bad})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestService_GetUser_NotFound(t *testing.T) {
	s, users, _, _, _ := newTestService()
	users.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := s.GetUser(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
