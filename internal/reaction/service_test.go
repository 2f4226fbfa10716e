package reaction

import (
	"context"
	"testing"

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

func (m *MockRepository) GetDrop(ctx context.Context, dropID string) (*domain.Drop, error) {
	args := m.Called(ctx, dropID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drop), args.Error(1)
}

func (m *MockRepository) GetItem(ctx context.Context, itemID int) (*domain.ItemDefinition, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemDefinition), args.Error(1)
}

func (m *MockRepository) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockRepository) BeginTx(ctx context.Context) (repository.ReactionTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.ReactionTx), args.Error(1)
}

// MockTx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) MarkConsumed(ctx context.Context, dropID, ownerID string) error {
	args := m.Called(ctx, dropID, ownerID)
	return args.Error(0)
}

func (m *MockTx) AppendPostReaction(ctx context.Context, postID, dropID string) error {
	args := m.Called(ctx, postID, dropID)
	return args.Error(0)
}

func (m *MockTx) AdjustExperience(ctx context.Context, userID string, delta int64) (int64, error) {
	args := m.Called(ctx, userID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

const (
	actorID  = "user-actor"
	authorID = "user-author"
)

func reactionItem(delta int64) *domain.ItemDefinition {
	return &domain.ItemDefinition{
		ID:     7,
		Name:   "sparkle",
		Rarity: domain.RarityUncommon,
		Kind: domain.ItemKind{
			Name:     domain.KindReaction,
			Reaction: &domain.ReactionKind{ExperienceDelta: delta},
		},
	}
}

func setupHappyPath(t *testing.T, delta, committed int64) (*MockRepository, *MockTx, Service) {
	t.Helper()

	repo := new(MockRepository)
	tx := new(MockTx)
	s := NewService(repo, event.NewMemoryBus())

	repo.On("GetDrop", mock.Anything, "drop-r").
		Return(&domain.Drop{ID: "drop-r", OwnerID: actorID, ItemID: 7}, nil)
	repo.On("GetItem", mock.Anything, 7).Return(reactionItem(delta), nil)
	repo.On("GetPost", mock.Anything, "post-1").
		Return(&domain.Post{ID: "post-1", AuthorID: authorID}, nil)
	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	tx.On("MarkConsumed", mock.Anything, "drop-r", actorID).Return(nil)
	tx.On("AppendPostReaction", mock.Anything, "post-1", "drop-r").Return(nil)
	tx.On("AdjustExperience", mock.Anything, authorID, delta).Return(committed, nil)
	tx.On("Commit", mock.Anything).Return(nil)
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()

	return repo, tx, s
}

func TestApply_Success(t *testing.T) {
	repo, tx, s := setupHappyPath(t, 25, 125)

	result, err := s.Apply(context.Background(), actorID, "drop-r", "post-1")

	require.NoError(t, err)
	assert.Equal(t, int64(25), result.ExperienceDelta)
	assert.Equal(t, int64(125), result.AuthorExperience)
	assert.Equal(t, 2, result.AuthorLevel)
	repo.AssertExpectations(t)
	tx.AssertExpectations(t)
}

// A negative reaction against a low balance clamps at the floor. The
// consumption still commits; only the ledger adjustment is clamped.
func TestApply_NegativeDeltaClampsAtZero(t *testing.T) {
	_, tx, s := setupHappyPath(t, -100, 0)

	result, err := s.Apply(context.Background(), actorID, "drop-r", "post-1")

	require.NoError(t, err)
	assert.Equal(t, int64(0), result.AuthorExperience)
	assert.Equal(t, 1, result.AuthorLevel)
	tx.AssertCalled(t, "MarkConsumed", mock.Anything, "drop-r", actorID)
}

func TestApply_SelfReaction(t *testing.T) {
	repo := new(MockRepository)
	s := NewService(repo, event.NewMemoryBus())

	repo.On("GetDrop", mock.Anything, "drop-r").
		Return(&domain.Drop{ID: "drop-r", OwnerID: actorID, ItemID: 7}, nil)
	repo.On("GetItem", mock.Anything, 7).Return(reactionItem(10), nil)
	repo.On("GetPost", mock.Anything, "post-1").
		Return(&domain.Post{ID: "post-1", AuthorID: actorID}, nil)

	_, err := s.Apply(context.Background(), actorID, "drop-r", "post-1")

	assert.ErrorIs(t, err, domain.ErrSelfReaction)
	repo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestApply_NotOwner(t *testing.T) {
	repo := new(MockRepository)
	s := NewService(repo, event.NewMemoryBus())

	repo.On("GetDrop", mock.Anything, "drop-r").
		Return(&domain.Drop{ID: "drop-r", OwnerID: "someone-else", ItemID: 7}, nil)

	_, err := s.Apply(context.Background(), actorID, "drop-r", "post-1")

	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestApply_AlreadyConsumed(t *testing.T) {
	repo := new(MockRepository)
	s := NewService(repo, event.NewMemoryBus())

	repo.On("GetDrop", mock.Anything, "drop-r").
		Return(&domain.Drop{ID: "drop-r", OwnerID: actorID, ItemID: 7, Consumed: true}, nil)

	_, err := s.Apply(context.Background(), actorID, "drop-r", "post-1")

	assert.ErrorIs(t, err, domain.ErrAlreadyConsumed)
}

func TestApply_NonReactionKind(t *testing.T) {
	repo := new(MockRepository)
	s := NewService(repo, event.NewMemoryBus())

	repo.On("GetDrop", mock.Anything, "drop-r").
		Return(&domain.Drop{ID: "drop-r", OwnerID: actorID, ItemID: 7}, nil)
	repo.On("GetItem", mock.Anything, 7).
		Return(&domain.ItemDefinition{ID: 7, Name: "gold star",
			Kind: domain.ItemKind{Name: domain.KindBadge}}, nil)

	_, err := s.Apply(context.Background(), actorID, "drop-r", "post-1")

	assert.ErrorIs(t, err, domain.ErrKindMismatch)
}

// Losing the conditional consume race surfaces the ownership error and
// nothing else in the transaction runs.
func TestApply_DoubleConsumeRace(t *testing.T) {
	repo := new(MockRepository)
	tx := new(MockTx)
	s := NewService(repo, event.NewMemoryBus())

	repo.On("GetDrop", mock.Anything, "drop-r").
		Return(&domain.Drop{ID: "drop-r", OwnerID: actorID, ItemID: 7}, nil)
	repo.On("GetItem", mock.Anything, 7).Return(reactionItem(10), nil)
	repo.On("GetPost", mock.Anything, "post-1").
		Return(&domain.Post{ID: "post-1", AuthorID: authorID}, nil)
	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	tx.On("MarkConsumed", mock.Anything, "drop-r", actorID).Return(domain.ErrAlreadyConsumed)
	tx.On("Rollback", mock.Anything).Return(nil)

	_, err := s.Apply(context.Background(), actorID, "drop-r", "post-1")

	assert.ErrorIs(t, err, domain.ErrAlreadyConsumed)
	tx.AssertNotCalled(t, "AdjustExperience", mock.Anything, mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestApply_PublishesEvent(t *testing.T) {
	repo := new(MockRepository)
	tx := new(MockTx)
	bus := event.NewMemoryBus()
	s := NewService(repo, bus)

	var got event.ReactionAppliedPayloadV1
	bus.Subscribe(event.ReactionApplied, func(_ context.Context, e event.Event) error {
		got = e.Payload.(event.ReactionAppliedPayloadV1)
		return nil
	})

	repo.On("GetDrop", mock.Anything, "drop-r").
		Return(&domain.Drop{ID: "drop-r", OwnerID: actorID, ItemID: 7}, nil)
	repo.On("GetItem", mock.Anything, 7).Return(reactionItem(15), nil)
	repo.On("GetPost", mock.Anything, "post-1").
		Return(&domain.Post{ID: "post-1", AuthorID: authorID}, nil)
	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	tx.On("MarkConsumed", mock.Anything, "drop-r", actorID).Return(nil)
	tx.On("AppendPostReaction", mock.Anything, "post-1", "drop-r").Return(nil)
	tx.On("AdjustExperience", mock.Anything, authorID, int64(15)).Return(int64(15), nil)
	tx.On("Commit", mock.Anything).Return(nil)
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()

	_, err := s.Apply(context.Background(), actorID, "drop-r", "post-1")

	require.NoError(t, err)
	assert.Equal(t, actorID, got.ActorID)
	assert.Equal(t, authorID, got.AuthorID)
	assert.Equal(t, int64(15), got.ExperienceDelta)
	assert.Equal(t, int64(15), got.AuthorExperience)
}
