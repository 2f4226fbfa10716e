package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mossdale/dropforge/internal/domain"
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

func (m *MockRepository) GetInventory(ctx context.Context, ownerID string) ([]domain.Drop, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Drop), args.Error(1)
}

func (m *MockRepository) Mint(ctx context.Context, itemID int, ownerID string, pattern int32) (*domain.Drop, error) {
	args := m.Called(ctx, itemID, ownerID, pattern)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drop), args.Error(1)
}

func (m *MockRepository) BeginTx(ctx context.Context) (repository.LedgerTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.LedgerTx), args.Error(1)
}

// MockTx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) GetDrop(ctx context.Context, dropID string) (*domain.Drop, error) {
	args := m.Called(ctx, dropID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drop), args.Error(1)
}

func (m *MockTx) TransferOwnership(ctx context.Context, dropID, expectedOwner, newOwner string) error {
	args := m.Called(ctx, dropID, expectedOwner, newOwner)
	return args.Error(0)
}

func (m *MockTx) MarkConsumed(ctx context.Context, dropID, ownerID string) error {
	args := m.Called(ctx, dropID, ownerID)
	return args.Error(0)
}

func (m *MockTx) ClearEquipReferences(ctx context.Context, ownerID, dropID string) error {
	args := m.Called(ctx, ownerID, dropID)
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

const (
	giverID     = "user-giver"
	recipientID = "user-recipient"
)

func TestGift_Success(t *testing.T) {
	repo := new(MockRepository)
	tx := new(MockTx)
	s := NewService(repo)

	repo.On("GetDrop", mock.Anything, "drop-g").
		Return(&domain.Drop{ID: "drop-g", OwnerID: giverID}, nil)
	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	tx.On("TransferOwnership", mock.Anything, "drop-g", giverID, recipientID).Return(nil)
	tx.On("ClearEquipReferences", mock.Anything, giverID, "drop-g").Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()

	drop, err := s.Gift(context.Background(), giverID, recipientID, "drop-g")

	require.NoError(t, err)
	assert.Equal(t, recipientID, drop.OwnerID)
	tx.AssertExpectations(t)
}

func TestGift_SelfGift(t *testing.T) {
	s := NewService(new(MockRepository))

	_, err := s.Gift(context.Background(), giverID, giverID, "drop-g")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGift_NotOwner(t *testing.T) {
	repo := new(MockRepository)
	s := NewService(repo)

	repo.On("GetDrop", mock.Anything, "drop-g").
		Return(&domain.Drop{ID: "drop-g", OwnerID: "someone-else"}, nil)

	_, err := s.Gift(context.Background(), giverID, recipientID, "drop-g")

	assert.ErrorIs(t, err, domain.ErrNotOwner)
	repo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestGift_ConsumedDrop(t *testing.T) {
	repo := new(MockRepository)
	s := NewService(repo)

	repo.On("GetDrop", mock.Anything, "drop-g").
		Return(&domain.Drop{ID: "drop-g", OwnerID: giverID, Consumed: true}, nil)

	_, err := s.Gift(context.Background(), giverID, recipientID, "drop-g")

	assert.ErrorIs(t, err, domain.ErrAlreadyConsumed)
}

// The conditional transfer loses to a concurrent move of the same drop.
// Nothing commits.
func TestGift_LostTransferRace(t *testing.T) {
	repo := new(MockRepository)
	tx := new(MockTx)
	s := NewService(repo)

	repo.On("GetDrop", mock.Anything, "drop-g").
		Return(&domain.Drop{ID: "drop-g", OwnerID: giverID}, nil)
	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	tx.On("TransferOwnership", mock.Anything, "drop-g", giverID, recipientID).
		Return(domain.ErrNotOwner)
	tx.On("Rollback", mock.Anything).Return(nil)

	_, err := s.Gift(context.Background(), giverID, recipientID, "drop-g")

	assert.ErrorIs(t, err, domain.ErrNotOwner)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestMintUnique_Success(t *testing.T) {
	repo := new(MockRepository)
	s := NewService(repo).(*service)
	s.randInt32 = func(n int32) int32 { return 42 }

	def := &domain.ItemDefinition{
		ID:           9,
		Name:         "founders crown",
		Rarity:       domain.RarityUnique,
		PatternCount: domain.DefaultPatternCount,
		Kind:         domain.ItemKind{Name: domain.KindBadge},
	}
	repo.On("Mint", mock.Anything, 9, giverID, int32(42)).
		Return(&domain.Drop{ID: "drop-u", OwnerID: giverID, ItemID: 9, Pattern: 42}, nil)

	drop, err := s.MintUnique(context.Background(), def, giverID)

	require.NoError(t, err)
	assert.Equal(t, int32(42), drop.Pattern)
}

func TestMintUnique_RejectsDroppableRarity(t *testing.T) {
	repo := new(MockRepository)
	s := NewService(repo)

	def := &domain.ItemDefinition{ID: 9, Name: "plain badge", Rarity: domain.RarityCommon}

	_, err := s.MintUnique(context.Background(), def, giverID)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	repo.AssertNotCalled(t, "Mint", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetInventory(t *testing.T) {
	repo := new(MockRepository)
	s := NewService(repo)

	repo.On("GetInventory", mock.Anything, giverID).
		Return([]domain.Drop{{ID: "d1", OwnerID: giverID}, {ID: "d2", OwnerID: giverID}}, nil)

	drops, err := s.GetInventory(context.Background(), giverID)

	require.NoError(t, err)
	assert.Len(t, drops, 2)
}
