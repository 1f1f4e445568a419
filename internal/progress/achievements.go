package progress

import "github.com/cyberguard/awareness-service/internal/models"

type Achievement struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
}

type achievementRule struct {
	Achievement
	requirement func(p models.UserProgress, c Catalog) bool
}

var achievementRules = []achievementRule{
	{
		Achievement: Achievement{ID: 1, Title: "Security Novice", Description: "Complete your first challenge", Icon: "🎯"},
		requirement: func(p models.UserProgress, _ Catalog) bool {
			return len(p.CompletedChallenges) >= 1
		},
	},
	{
		Achievement: Achievement{ID: 2, Title: "Quick Learner", Description: "Complete 5 quizzes", Icon: "📚"},
		requirement: func(p models.UserProgress, _ Catalog) bool {
			return p.QuizzesCompleted >= 5
		},
	},
	{
		Achievement: Achievement{ID: 3, Title: "Security Expert", Description: "Reach Expert level", Icon: "🏆"},
		requirement: func(p models.UserProgress, _ Catalog) bool {
			return p.Level == models.LevelExpert
		},
	},
	{
		Achievement: Achievement{ID: 4, Title: "Perfect Score", Description: "Complete all challenges with 100% accuracy", Icon: "⭐"},
		requirement: func(p models.UserProgress, c Catalog) bool {
			return len(p.CompletedChallenges) == len(c.Challenges()) &&
				p.TotalPoints >= c.TotalPossiblePoints()-pointsEpsilon
		},
	},
}

// pointsEpsilon absorbs float drift from summing per-quiz shares.
const pointsEpsilon = 1e-6

// Achievements evaluates every achievement against p.
func Achievements(p models.UserProgress, c Catalog) []Achievement {
	out := make([]Achievement, 0, len(achievementRules))
	for _, rule := range achievementRules {
		a := rule.Achievement
		a.Unlocked = rule.requirement(p, c)
		out = append(out, a)
	}
	return out
}

// Stats are the dashboard percentages derived from a progress record.
type Stats struct {
	ChallengesCompleted int     `json:"challenges_completed"`
	TotalChallenges     int     `json:"total_challenges"`
	ChallengePercent    float64 `json:"challenge_percent"`
	PointsEarned        float64 `json:"points_earned"`
	TotalPoints         float64 `json:"total_points"`
	PointsPercent       float64 `json:"points_percent"`
	QuizzesCompleted    int     `json:"quizzes_completed"`
	TotalQuizzes        int     `json:"total_quizzes"`
	Level               string  `json:"level"`
	LevelProgress       float64 `json:"level_progress"`
}

// Summarize derives dashboard statistics from p.
func Summarize(p models.UserProgress, c Catalog) Stats {
	st := Stats{
		ChallengesCompleted: len(p.CompletedChallenges),
		TotalChallenges:     len(c.Challenges()),
		PointsEarned:        p.TotalPoints,
		TotalPoints:         c.TotalPossiblePoints(),
		QuizzesCompleted:    p.QuizzesCompleted,
		TotalQuizzes:        c.TotalQuizzes(),
		Level:               string(p.Level),
		LevelProgress:       p.LevelProgress,
	}
	if st.TotalChallenges > 0 {
		st.ChallengePercent = float64(st.ChallengesCompleted) / float64(st.TotalChallenges) * 100
	}
	if st.TotalPoints > 0 {
		st.PointsPercent = st.PointsEarned / st.TotalPoints * 100
	}
	return st
}
