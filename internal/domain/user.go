package domain

import "time"

// MaxEquippedBadges caps the ordered badge slot collection.
const MaxEquippedBadges = 3

// EquipSlots is the per-user presentation selection. Every reference must
// point at a drop currently owned by the same user; transfers clear any slot
// referencing the moved drop inside the same transaction.
type EquipSlots struct {
	ProfilePic *string  `json:"profile_pic,omitempty"`
	Background *string  `json:"background,omitempty"`
	Badges     []string `json:"badges"`
}

// HasBadge reports whether dropID is already in the badge list.
func (e EquipSlots) HasBadge(dropID string) bool {
	for _, id := range e.Badges {
		if id == dropID {
			return true
		}
	}
	return false
}

// References reports whether any slot points at dropID.
func (e EquipSlots) References(dropID string) bool {
	if e.ProfilePic != nil && *e.ProfilePic == dropID {
		return true
	}
	if e.Background != nil && *e.Background == dropID {
		return true
	}
	return e.HasBadge(dropID)
}

// User carries the economy fields embedded in the user record. Registration
// and authentication live outside this core.
type User struct {
	ID         string     `json:"user_id"`
	Username   string     `json:"username"`
	Experience int64      `json:"experience"`
	LastReward time.Time  `json:"last_reward"`
	Equipped   EquipSlots `json:"equipped"`
}
