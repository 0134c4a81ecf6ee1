package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"currencies-app/internal/domain/currency"
	"currencies-app/internal/domain/subscription"
	domain "currencies-app/internal/domain/user"
	apperrors "currencies-app/pkg/errors"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListUsers(ctx context.Context) ([]domain.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockRepository) GetUser(ctx context.Context, id int64) (*domain.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRepository) GetCurrency(ctx context.Context, id int64) (*currency.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.Record), args.Error(1)
}

func (m *MockRepository) AddSubscription(ctx context.Context, userID, currencyID int64) (int64, error) {
	args := m.Called(ctx, userID, currencyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListSubscriptions(ctx context.Context, userID int64) ([]subscription.Record, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.Record), args.Error(1)
}

func (m *MockRepository) RemoveSubscription(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func setupTestService(t *testing.T) (*Service, *MockRepository) {
	repo := new(MockRepository)
	return New(repo, zaptest.NewLogger(t)), repo
}

var usd = currency.Record{ID: 1, Fields: currency.Fields{NumCode: "840", CharCode: "USD", Name: "Dollar", Value: 90.5, Nominal: 1}}

// ==================== USER TESTS ====================

func TestListUsers(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("ListUsers", ctx).Return([]domain.Record{{ID: 1, Name: "Leisan"}, {ID: 2, Name: "Rashit"}}, nil)

	users, err := svc.ListUsers(ctx)

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Rashit", users[1].Name())
}

func TestListUsers_RepositoryError(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("ListUsers", ctx).Return(nil, errors.New("database error"))

	users, err := svc.ListUsers(ctx)

	assert.Nil(t, users)
	assert.EqualError(t, err, "database error")
}

func TestGetUser_Success(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("GetUser", ctx, int64(1)).Return(&domain.Record{ID: 1, Name: "Leisan"}, nil)

	u, err := svc.GetUser(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID())
	assert.Equal(t, "Leisan", u.Name())
}

func TestGetUser_NotFound(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("GetUser", ctx, int64(999)).Return(nil, nil)

	u, err := svc.GetUser(ctx, 999)

	assert.Nil(t, u)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestCreateUser_Success(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("CreateUser", ctx, "Kamila").Return(int64(3), nil)

	u, err := svc.CreateUser(ctx, "Kamila")

	require.NoError(t, err)
	assert.Equal(t, int64(3), u.ID())
	repo.AssertExpectations(t)
}

func TestCreateUser_BlankName(t *testing.T) {
	svc, repo := setupTestService(t)

	u, err := svc.CreateUser(context.Background(), "   ")

	assert.Nil(t, u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

// ==================== SUBSCRIPTION TESTS ====================

func TestGetUserSubscriptions(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("ListSubscriptions", ctx, int64(1)).Return([]subscription.Record{{ID: 7, Currency: usd}}, nil)

	entries, err := svc.GetUserSubscriptions(ctx, 1)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].ID)
	assert.Equal(t, "USD", entries[0].Currency.CharCode())
}

func TestSubscribe_Success(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("GetUser", ctx, int64(1)).Return(&domain.Record{ID: 1, Name: "Leisan"}, nil)
	repo.On("GetCurrency", ctx, int64(1)).Return(&usd, nil)
	repo.On("AddSubscription", ctx, int64(1), int64(1)).Return(int64(10), nil)

	id, err := svc.Subscribe(ctx, 1, 1)

	require.NoError(t, err)
	assert.Equal(t, int64(10), id)
	repo.AssertExpectations(t)
}

func TestSubscribe_InvalidIDs(t *testing.T) {
	svc, repo := setupTestService(t)

	_, err := svc.Subscribe(context.Background(), 0, -1)

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "user_id")
	assert.Contains(t, err.Error(), "currency_id")
	repo.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestSubscribe_UnknownUser(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("GetUser", ctx, int64(5)).Return(nil, nil)

	_, err := svc.Subscribe(ctx, 5, 1)

	assert.True(t, apperrors.IsNotFound(err))
	assert.EqualError(t, err, "user not found")
}

func TestSubscribe_UnknownCurrency(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("GetUser", ctx, int64(1)).Return(&domain.Record{ID: 1, Name: "Leisan"}, nil)
	repo.On("GetCurrency", ctx, int64(42)).Return(nil, nil)

	_, err := svc.Subscribe(ctx, 1, 42)

	assert.True(t, apperrors.IsNotFound(err))
	assert.EqualError(t, err, "currency not found")
	repo.AssertNotCalled(t, "AddSubscription", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscribe_Duplicate(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("GetUser", ctx, int64(1)).Return(&domain.Record{ID: 1, Name: "Leisan"}, nil)
	repo.On("GetCurrency", ctx, int64(1)).Return(&usd, nil)
	repo.On("AddSubscription", ctx, int64(1), int64(1)).
		Return(int64(0), apperrors.NewAlreadyExistsError("subscription", "user is already subscribed to this currency"))

	_, err := svc.Subscribe(ctx, 1, 1)

	assert.True(t, apperrors.IsAlreadyExists(err))
}

func TestUnsubscribe(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("RemoveSubscription", ctx, int64(10)).Return(true, nil)
	repo.On("RemoveSubscription", ctx, int64(11)).Return(false, nil)

	ok, err := svc.Unsubscribe(ctx, 10)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Unsubscribe(ctx, 11)
	assert.NoError(t, err)
	assert.False(t, ok)
}
