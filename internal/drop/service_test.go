package drop

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/event"
	"github.com/mossdale/dropforge/internal/repository"
)

// MockRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) BeginTx(ctx context.Context) (repository.RewardTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.RewardTx), args.Error(1)
}

// MockTx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) AdvanceLastReward(ctx context.Context, userID string, expected, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, expected, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockTx) GetAvailableByRarity(ctx context.Context, rarity domain.Rarity) ([]domain.ItemDefinition, error) {
	args := m.Called(ctx, rarity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ItemDefinition), args.Error(1)
}

func (m *MockTx) MintDrop(ctx context.Context, itemID int, ownerID string, pattern int32) (*domain.Drop, error) {
	args := m.Called(ctx, itemID, ownerID, pattern)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drop), args.Error(1)
}

func (m *MockTx) InsertPost(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	post.ID = "post-1"
	return args.Error(0)
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

const authorID = "user-author"

var (
	baseTime = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	cooldown = 24 * time.Hour
)

// newTestService pins time and RNG so each path is forced deterministically.
func newTestService(repo repository.Reward, bus event.Bus, roll uint32) *service {
	s := NewService(repo, bus, cooldown).(*service)
	s.now = func() time.Time { return baseTime }
	s.randUint32 = func() uint32 { return roll }
	s.randInt32n = func(n int32) int32 { return 0 }
	s.randIndex = func(n int) int { return 0 }
	return s
}

func eligibleUser() *domain.User {
	return &domain.User{ID: authorID, LastReward: baseTime.Add(-48 * time.Hour)}
}

func commonBadge() domain.ItemDefinition {
	return domain.ItemDefinition{
		ID:           1,
		Name:         "gold star",
		Rarity:       domain.RarityCommon,
		Available:    true,
		PatternCount: domain.DefaultPatternCount,
		Kind:         domain.ItemKind{Name: domain.KindBadge},
	}
}

func TestCreatePost_WinningRollMints(t *testing.T) {
	repo := new(MockRepository)
	tx := new(MockTx)
	s := newTestService(repo, event.NewMemoryBus(), math.MaxUint32)

	repo.On("GetUser", mock.Anything, authorID).Return(eligibleUser(), nil)
	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	tx.On("AdvanceLastReward", mock.Anything, authorID, eligibleUser().LastReward, baseTime).Return(true, nil)
	tx.On("GetAvailableByRarity", mock.Anything, domain.RarityLegendary).
		Return([]domain.ItemDefinition{commonBadge()}, nil)
	tx.On("MintDrop", mock.Anything, 1, authorID, int32(0)).
		Return(&domain.Drop{ID: "drop-1", OwnerID: authorID, ItemID: 1}, nil)
	tx.On("InsertPost", mock.Anything, mock.AnythingOfType("*domain.Post")).Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()

	result, err := s.CreatePost(context.Background(), authorID, "thread-1", "hello")

	require.NoError(t, err)
	require.NotNil(t, result.Reward)
	assert.Equal(t, "drop-1", result.Reward.ID)
	require.NotNil(t, result.Post.RewardDropID)
	assert.Equal(t, "drop-1", *result.Post.RewardDropID)
	tx.AssertExpectations(t)
}

func TestCreatePost_MissedRollStillPosts(t *testing.T) {
	repo := new(MockRepository)
	tx := new(MockTx)
	s := newTestService(repo, event.NewMemoryBus(), 0)

	repo.On("GetUser", mock.Anything, authorID).Return(eligibleUser(), nil)
	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	tx.On("AdvanceLastReward", mock.Anything, authorID, mock.Anything, baseTime).Return(true, nil)
	tx.On("InsertPost", mock.Anything, mock.AnythingOfType("*domain.Post")).Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()

	result, err := s.CreatePost(context.Background(), authorID, "thread-1", "hello")

	require.NoError(t, err)
	assert.Nil(t, result.Reward)
	assert.Nil(t, result.Post.RewardDropID)
	// The cooldown still advanced on the miss.
	tx.AssertCalled(t, "AdvanceLastReward", mock.Anything, authorID, mock.Anything, baseTime)
	tx.AssertNotCalled(t, "MintDrop", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePost_OnCooldownSkipsRoll(t *testing.T) {
	repo := new(MockRepository)
	tx := new(MockTx)
	s := newTestService(repo, event.NewMemoryBus(), math.MaxUint32)

	repo.On("GetUser", mock.Anything, authorID).
		Return(&domain.User{ID: authorID, LastReward: baseTime.Add(-time.Hour)}, nil)
	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	tx.On("InsertPost", mock.Anything, mock.AnythingOfType("*domain.Post")).Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()

	result, err := s.CreatePost(context.Background(), authorID, "thread-1", "hello")

	require.NoError(t, err)
	assert.Nil(t, result.Reward)
	tx.AssertNotCalled(t, "AdvanceLastReward", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Losing the conditional cooldown advance means a concurrent post already
// claimed this reward window. The post still goes through.
func TestCreatePost_LostCooldownRace(t *testing.T) {
	repo := new(MockRepository)
	tx := new(MockTx)
	s := newTestService(repo, event.NewMemoryBus(), math.MaxUint32)

	repo.On("GetUser", mock.Anything, authorID).Return(eligibleUser(), nil)
	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	tx.On("AdvanceLastReward", mock.Anything, authorID, mock.Anything, baseTime).Return(false, nil)
	tx.On("InsertPost", mock.Anything, mock.AnythingOfType("*domain.Post")).Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()

	result, err := s.CreatePost(context.Background(), authorID, "thread-1", "hello")

	require.NoError(t, err)
	assert.Nil(t, result.Reward)
	tx.AssertNotCalled(t, "MintDrop", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// An empty rolled tier falls through to the next less-rare tier.
func TestCreatePost_TierFallback(t *testing.T) {
	repo := new(MockRepository)
	tx := new(MockTx)
	s := newTestService(repo, event.NewMemoryBus(), math.MaxUint32)

	repo.On("GetUser", mock.Anything, authorID).Return(eligibleUser(), nil)
	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	tx.On("AdvanceLastReward", mock.Anything, authorID, mock.Anything, baseTime).Return(true, nil)
	tx.On("GetAvailableByRarity", mock.Anything, domain.RarityLegendary).
		Return([]domain.ItemDefinition{}, nil)
	tx.On("GetAvailableByRarity", mock.Anything, domain.RarityUltraRare).
		Return([]domain.ItemDefinition{commonBadge()}, nil)
	tx.On("MintDrop", mock.Anything, 1, authorID, int32(0)).
		Return(&domain.Drop{ID: "drop-1", OwnerID: authorID, ItemID: 1}, nil)
	tx.On("InsertPost", mock.Anything, mock.AnythingOfType("*domain.Post")).Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()

	result, err := s.CreatePost(context.Background(), authorID, "thread-1", "hello")

	require.NoError(t, err)
	require.NotNil(t, result.Reward)
}

// A fully empty catalog drops nothing but never fails the post.
func TestCreatePost_EmptyCatalog(t *testing.T) {
	repo := new(MockRepository)
	tx := new(MockTx)
	s := newTestService(repo, event.NewMemoryBus(), math.MaxUint32)

	repo.On("GetUser", mock.Anything, authorID).Return(eligibleUser(), nil)
	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	tx.On("AdvanceLastReward", mock.Anything, authorID, mock.Anything, baseTime).Return(true, nil)
	tx.On("GetAvailableByRarity", mock.Anything, mock.AnythingOfType("domain.Rarity")).
		Return([]domain.ItemDefinition{}, nil)
	tx.On("InsertPost", mock.Anything, mock.AnythingOfType("*domain.Post")).Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()

	result, err := s.CreatePost(context.Background(), authorID, "thread-1", "hello")

	require.NoError(t, err)
	assert.Nil(t, result.Reward)
	tx.AssertNotCalled(t, "MintDrop", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePost_EmptyBody(t *testing.T) {
	s := newTestService(new(MockRepository), event.NewMemoryBus(), 0)

	_, err := s.CreatePost(context.Background(), authorID, "thread-1", "   ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreatePost_PublishesRewardEvent(t *testing.T) {
	repo := new(MockRepository)
	tx := new(MockTx)
	bus := event.NewMemoryBus()
	s := newTestService(repo, bus, math.MaxUint32)

	var got event.RewardDroppedPayloadV1
	bus.Subscribe(event.RewardDropped, func(_ context.Context, e event.Event) error {
		got = e.Payload.(event.RewardDroppedPayloadV1)
		return nil
	})

	repo.On("GetUser", mock.Anything, authorID).Return(eligibleUser(), nil)
	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	tx.On("AdvanceLastReward", mock.Anything, authorID, mock.Anything, baseTime).Return(true, nil)
	tx.On("GetAvailableByRarity", mock.Anything, domain.RarityLegendary).
		Return([]domain.ItemDefinition{commonBadge()}, nil)
	tx.On("MintDrop", mock.Anything, 1, authorID, int32(0)).
		Return(&domain.Drop{ID: "drop-1", OwnerID: authorID, ItemID: 1}, nil)
	tx.On("InsertPost", mock.Anything, mock.AnythingOfType("*domain.Post")).Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()

	_, err := s.CreatePost(context.Background(), authorID, "thread-1", "hello")

	require.NoError(t, err)
	assert.Equal(t, "drop-1", got.DropID)
	assert.Equal(t, authorID, got.OwnerID)
	assert.Equal(t, "gold star", got.ItemName)
}
