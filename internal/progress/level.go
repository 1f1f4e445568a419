package progress

import "github.com/cyberguard/awareness-service/internal/models"

const (
	expertPointsThreshold       = 80.0
	intermediatePointsThreshold = 40.0

	expertMinutesThreshold       = 600 // 10 hours
	intermediateMinutesThreshold = 300 // 5 hours
)

// ClassifyPoints derives the skill level from a point-progress percentage.
// Boundaries are closed on the lower end: exactly 80 is Expert.
func ClassifyPoints(levelProgress float64) models.Level {
	switch {
	case levelProgress >= expertPointsThreshold:
		return models.LevelExpert
	case levelProgress >= intermediatePointsThreshold:
		return models.LevelIntermediate
	default:
		return models.LevelBeginner
	}
}

// ClassifyTime derives the learning level from cumulative minutes. Below the
// intermediate threshold the current level is kept.
func ClassifyTime(minutes int, current models.Level) models.Level {
	switch {
	case minutes >= expertMinutesThreshold:
		return models.LevelExpert
	case minutes >= intermediateMinutesThreshold:
		return models.LevelIntermediate
	case current == "":
		return models.LevelBeginner
	default:
		return current
	}
}
