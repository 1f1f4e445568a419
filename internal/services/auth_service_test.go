package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cyberguard/awareness-service/internal/models"
	"github.com/cyberguard/awareness-service/internal/repositories"
	"github.com/cyberguard/awareness-service/internal/validator"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

const testSecret = "test-secret"

func newTestAuthService(users repositories.UserRepository) *authService {
	return NewAuthService(AuthServiceConfig{
		Users:     users,
		Secret:    testSecret,
		TokenTTL:  time.Hour,
		Logger:    discardLogger(),
		Validator: validator.New(),
	}).(*authService)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and issues token", func(t *testing.T) {
		users := &MockUserRepository{}
		users.On("ExistsByEmail", ctx, "alice@example.com").Return(false, nil)
		users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "alice@example.com" &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cure-pass")) == nil
		})).Return(nil)

		svc := newTestAuthService(users)
		resp, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Email: " Alice@Example.com ", Password: "s3cure-pass"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, uint(1), resp.User.ID)

		claims, err := svc.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, uint(1), claims.UserID)
		assert.Equal(t, "alice@example.com", claims.Email)
		users.AssertExpectations(t)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc := newTestAuthService(&MockUserRepository{})
		_, err := svc.Register(ctx, &RegisterRequest{Username: "al", Email: "nope", Password: "short"})
		require.Error(t, err)
		assert.True(t, IsValidation(err))

		var ve ValidationErrors
		require.True(t, errors.As(err, &ve))
		assert.Len(t, ve, 3)
	})

	t.Run("email already registered", func(t *testing.T) {
		users := &MockUserRepository{}
		users.On("ExistsByEmail", ctx, "bob@example.com").Return(true, nil)

		_, err := newTestAuthService(users).Register(ctx, &RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrEmailTaken)
		assert.True(t, IsConflict(err))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unique violation on insert", func(t *testing.T) {
		users := &MockUserRepository{}
		users.On("ExistsByEmail", ctx, "bob@example.com").Return(false, nil)
		users.On("Create", ctx, mock.Anything).Return(repositories.ErrDuplicate)

		_, err := newTestAuthService(users).Register(ctx, &RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	stored := &models.User{ID: 7, Username: "carol", Email: "carol@example.com", PasswordHash: hashed(t, "correct horse")}

	users := &MockUserRepository{}
	users.On("GetByEmail", ctx, "carol@example.com").Return(stored, nil)
	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repositories.ErrNotFound)
	users.On("GetByEmail", ctx, "down@example.com").Return(nil, errors.New("connection reset"))
	svc := newTestAuthService(users)

	resp, err := svc.Login(ctx, &LoginRequest{Email: "carol@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, uint(7), resp.User.ID)

	_, err = svc.Login(ctx, &LoginRequest{Email: "carol@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, IsUnauthorized(err))

	_, err = svc.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "down@example.com", Password: "whatever"})
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))

	_, err = svc.Login(ctx, &LoginRequest{Email: "", Password: ""})
	assert.True(t, IsValidation(err))
}

func TestAuthService_ValidateToken(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{})
	user := &models.User{ID: 3, Email: "dave@example.com"}

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		resp, err := svc.issue(user)
		require.NoError(t, err)
		svc.now = time.Now

		_, err = svc.ValidateToken(resp.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 3})
		signed, err := token.SignedString([]byte("other-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthService_GetUser(t *testing.T) {
	ctx := context.Background()
	users := &MockUserRepository{}
	users.On("GetByID", ctx, uint(1)).Return(&models.User{ID: 1}, nil)
	users.On("GetByID", ctx, uint(2)).Return(nil, repositories.ErrNotFound)
	svc := newTestAuthService(users)

	user, err := svc.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	_, err = svc.GetUser(ctx, 2)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
