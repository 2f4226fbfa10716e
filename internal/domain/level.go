package domain

import "math"

// ExperiencePerLevel scales the level curve: level n starts at
// (n-1)^2 * ExperiencePerLevel experience.
const ExperiencePerLevel = 100

// MediaAttachmentLevel gates attaching media to posts.
const MediaAttachmentLevel = 3

// LevelForExperience derives the display level from raw experience.
// The curve is monotonic; levels are never stored, always recomputed.
func LevelForExperience(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(math.Sqrt(float64(xp)/ExperiencePerLevel)) + 1
}

// CanAttachMedia is a level-gated privilege, evaluated fresh on each check.
func CanAttachMedia(xp int64) bool {
	return LevelForExperience(xp) >= MediaAttachmentLevel
}
