package content

import (
	"testing"

	"github.com/cyberguard/awareness-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Challenges(), 10)
	assert.Len(t, c.LearningPaths(), 3)
	assert.Equal(t, 1650.0, c.TotalPossiblePoints())
	assert.Equal(t, 50, c.TotalQuizzes())

	for id := 1; id <= 12; id++ {
		_, ok := c.Topic(id)
		assert.True(t, ok, "topic %d", id)
	}
	_, ok := c.Topic(13)
	assert.False(t, ok)

	ch, ok := c.Challenge(1)
	require.True(t, ok)
	assert.Equal(t, "Password Security Mastery", ch.Title)
	assert.Equal(t, models.SequenceAnswer{2, 0, 4, 3, 1}, ch.Quizzes[0].Correct)
	assert.Equal(t, models.PredicateAnswer(true), ch.Quizzes[1].Correct)
	assert.Equal(t, models.ChoiceAnswer(1), ch.Quizzes[2].Correct)

	_, ok = c.Challenge(99)
	assert.False(t, ok)
}

func TestSummaries(t *testing.T) {
	c := MustDefault()
	summaries := c.Summaries()
	require.Len(t, summaries, 10)
	assert.Equal(t, 1, summaries[0].ID)
	assert.Equal(t, 5, summaries[0].QuizCount)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name       string
		challenges string
		wantErr    string
	}{
		{
			name:       "malformed json",
			challenges: `[{"id":`,
			wantErr:    "parse challenges",
		},
		{
			name:       "no quizzes",
			challenges: `[{"id":1,"title":"T","points":10,"difficulty":"Beginner","quizzes":[]}]`,
			wantErr:    "challenge 1",
		},
		{
			name:       "bad difficulty",
			challenges: `[{"id":1,"title":"T","points":10,"difficulty":"Easy","quizzes":[{"id":1,"type":"mcq","question":"q","options":["a","b"],"correct_answer":0}]}]`,
			wantErr:    "challenge 1",
		},
		{
			name:       "choice out of range",
			challenges: `[{"id":1,"title":"T","points":10,"difficulty":"Beginner","quizzes":[{"id":1,"type":"mcq","question":"q","options":["a","b"],"correct_answer":5}]}]`,
			wantErr:    "out of range",
		},
		{
			name:       "ordering not a permutation",
			challenges: `[{"id":1,"title":"T","points":10,"difficulty":"Beginner","quizzes":[{"id":1,"type":"drag_drop","question":"q","options":["a","b"],"correct_answer":[0,0]}]}]`,
			wantErr:    "permutation",
		},
		{
			name: "duplicate challenge",
			challenges: `[
				{"id":1,"title":"T","points":10,"difficulty":"Beginner","quizzes":[{"id":1,"type":"mcq","question":"q","options":["a","b"],"correct_answer":0}]},
				{"id":1,"title":"U","points":10,"difficulty":"Beginner","quizzes":[{"id":1,"type":"mcq","question":"q","options":["a","b"],"correct_answer":0}]}
			]`,
			wantErr: "duplicate challenge id 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.challenges), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_DuplicateTopic(t *testing.T) {
	challenges := `[{"id":1,"title":"T","points":10,"difficulty":"Beginner","quizzes":[{"id":1,"type":"mcq","question":"q","options":["a","b"],"correct_answer":0}]}]`
	paths := `[
		{"id":1,"title":"A","level":"Beginner","topics":[{"id":1,"title":"x","type":"video","duration_minutes":5}]},
		{"id":2,"title":"B","level":"Advanced","topics":[{"id":1,"title":"y","type":"article","duration_minutes":5}]}
	]`

	_, err := Load([]byte(challenges), []byte(paths))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate topic id 1")
}
