package progress

import "github.com/cyberguard/awareness-service/internal/models"

type fakeCatalog struct {
	challenges []*models.Challenge
	topics     map[int]*models.Topic
}

func (f *fakeCatalog) Challenge(id int) (*models.Challenge, bool) {
	for _, c := range f.challenges {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

func (f *fakeCatalog) Challenges() []*models.Challenge { return f.challenges }

func (f *fakeCatalog) Topic(id int) (*models.Topic, bool) {
	t, ok := f.topics[id]
	return t, ok
}

func (f *fakeCatalog) TotalPossiblePoints() float64 {
	total := 0.0
	for _, c := range f.challenges {
		total += c.Points
	}
	return total
}

func (f *fakeCatalog) TotalQuizzes() int {
	n := 0
	for _, c := range f.challenges {
		n += len(c.Quizzes)
	}
	return n
}

func choiceQuiz(id, correct int) models.Quiz {
	return models.Quiz{
		ID:       id,
		Kind:     models.KindMultipleChoice,
		Question: "q",
		Options:  []string{"a", "b", "c", "d"},
		Correct:  models.ChoiceAnswer(correct),
	}
}

// newFakeCatalog has challenge 1 (5 quizzes, 100 points) and challenge 2
// (2 quizzes, 100 points) and topics 1..3.
func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		challenges: []*models.Challenge{
			{
				ID: 1, Title: "Five", Points: 100, Difficulty: models.DifficultyBeginner,
				Quizzes: []models.Quiz{choiceQuiz(1, 0), choiceQuiz(2, 1), choiceQuiz(3, 2), choiceQuiz(4, 3), choiceQuiz(5, 0)},
			},
			{
				ID: 2, Title: "Two", Points: 100, Difficulty: models.DifficultyAdvanced,
				Quizzes: []models.Quiz{
					{ID: 1, Kind: models.KindMatching, Question: "m", Options: []string{"a", "b", "c", "d", "e"}, Matches: []string{"1", "2", "3", "4", "5"}, Correct: models.SequenceAnswer{2, 0, 4, 3, 1}},
					{ID: 2, Kind: models.KindRedFlags, Question: "r", Flags: []string{"a", "b", "c"}, Correct: models.SelectionAnswer{0, 2}},
				},
			},
		},
		topics: map[int]*models.Topic{
			1: {ID: 1, Title: "Intro", Type: models.TopicVideo, DurationMinutes: 15},
			2: {ID: 2, Title: "Game", Type: models.TopicInteractive, DurationMinutes: 20},
			3: {ID: 3, Title: "Deep", Type: models.TopicArticle, DurationMinutes: 30},
		},
	}
}
