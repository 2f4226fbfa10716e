package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/repository"
)

// UserRepository implements repository.User and repository.Equip for PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

var _ repository.Equip = (*UserRepository)(nil)

const sqlSelectUser = `
SELECT user_id, username, experience, last_reward, equip_profile_pic, equip_background, equip_badges
FROM users`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var badges []string
	err := row.Scan(&u.ID, &u.Username, &u.Experience, &u.LastReward,
		&u.Equipped.ProfilePic, &u.Equipped.Background, &badges)
	if err != nil {
		return nil, err
	}
	u.Equipped.Badges = badges
	return &u, nil
}

func getUser(ctx context.Context, db dbtx, userID string) (*domain.User, error) {
	u, err := scanUser(db.QueryRow(ctx, sqlSelectUser+` WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUser retrieves a user by ID
func (r *UserRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return getUser(ctx, r.pool, userID)
}

// GetUserByUsername retrieves a user by username
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, sqlSelectUser+` WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return u, nil
}

const sqlUpsertUser = `
INSERT INTO users (username)
VALUES ($1)
ON CONFLICT (username) DO UPDATE SET updated_at = NOW()
RETURNING user_id, experience, last_reward`

// UpsertUser creates a user row if needed and backfills the economy fields
func (r *UserRepository) UpsertUser(ctx context.Context, user *domain.User) error {
	err := r.pool.QueryRow(ctx, sqlUpsertUser, user.Username).
		Scan(&user.ID, &user.Experience, &user.LastReward)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

const sqlUpdateEquipSlots = `
UPDATE users SET
    equip_profile_pic = $5,
    equip_background = $6,
    equip_badges = $7,
    updated_at = NOW()
WHERE user_id = $1
  AND equip_profile_pic IS NOT DISTINCT FROM $2
  AND equip_background IS NOT DISTINCT FROM $3
  AND equip_badges = $4`

const sqlEquipDrop = sqlUpdateEquipSlots + `
  AND EXISTS (SELECT 1 FROM drops WHERE drop_id = $8 AND owner_id = $1 AND NOT consumed)`

func badgesArg(badges []string) []string {
	if badges == nil {
		return []string{}
	}
	return badges
}

// UpdateEquipSlots replaces the presentation slots in a single conditional
// row write. The WHERE clause carries the slots the caller read; a concurrent
// writer changing them loses the caller its write, not its update.
func (r *UserRepository) UpdateEquipSlots(ctx context.Context, userID string, expected, next domain.EquipSlots) error {
	tag, err := r.pool.Exec(ctx, sqlUpdateEquipSlots, userID,
		expected.ProfilePic, expected.Background, badgesArg(expected.Badges),
		next.ProfilePic, next.Background, badgesArg(next.Badges))
	if err != nil {
		return fmt.Errorf("failed to update equip slots: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := getUser(ctx, r.pool, userID); err != nil {
			return err
		}
		return fmt.Errorf("%w: user %s", domain.ErrEquipConflict, userID)
	}
	return nil
}

// EquipDrop is UpdateEquipSlots additionally gated on the user still owning
// an unconsumed dropID, in the same statement. A transfer or consumption that
// commits between the service's read and this write makes it a zero-row
// update, diagnosed against the current drop rather than reported as success.
func (r *UserRepository) EquipDrop(ctx context.Context, userID, dropID string, expected, next domain.EquipSlots) error {
	tag, err := r.pool.Exec(ctx, sqlEquipDrop, userID,
		expected.ProfilePic, expected.Background, badgesArg(expected.Badges),
		next.ProfilePic, next.Background, badgesArg(next.Badges), dropID)
	if err != nil {
		return fmt.Errorf("failed to equip drop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := getUser(ctx, r.pool, userID); err != nil {
			return err
		}
		drop, err := getDrop(ctx, r.pool, dropID)
		if err != nil {
			return err
		}
		if drop.OwnerID != userID {
			return fmt.Errorf("%w: drop %s", domain.ErrNotOwner, dropID)
		}
		if drop.Consumed {
			return fmt.Errorf("%w: drop %s", domain.ErrAlreadyConsumed, dropID)
		}
		return fmt.Errorf("%w: user %s", domain.ErrEquipConflict, userID)
	}
	return nil
}

// GetDrop retrieves a drop for equip validation
func (r *UserRepository) GetDrop(ctx context.Context, dropID string) (*domain.Drop, error) {
	return getDrop(ctx, r.pool, dropID)
}

// GetItem retrieves a definition for equip kind checks
func (r *UserRepository) GetItem(ctx context.Context, itemID int) (*domain.ItemDefinition, error) {
	return getItem(ctx, r.pool, itemID)
}
