package content

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/cyberguard/awareness-service/internal/models"
	"github.com/cyberguard/awareness-service/internal/validator"
)

//go:embed data/*.json
var dataFS embed.FS

// Catalog is the immutable set of challenges and learning paths served to
// every client. It is safe for concurrent use.
type Catalog struct {
	challenges   []*models.Challenge
	byID         map[int]*models.Challenge
	paths        []models.LearningPath
	topics       map[int]*models.Topic
	totalPoints  float64
	totalQuizzes int
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog built from the embedded content. It is loaded
// once per process.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		challenges, err := dataFS.ReadFile("data/challenges.json")
		if err != nil {
			defaultErr = fmt.Errorf("read embedded challenges: %w", err)
			return
		}
		paths, err := dataFS.ReadFile("data/learning_paths.json")
		if err != nil {
			defaultErr = fmt.Errorf("read embedded learning paths: %w", err)
			return
		}
		defaultCatalog, defaultErr = Load(challenges, paths)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that cannot continue without content.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load parses and validates challenge and learning path JSON documents.
func Load(challengesJSON, pathsJSON []byte) (*Catalog, error) {
	var challenges []*models.Challenge
	if err := json.Unmarshal(challengesJSON, &challenges); err != nil {
		return nil, fmt.Errorf("parse challenges: %w", err)
	}
	var paths []models.LearningPath
	if len(pathsJSON) > 0 {
		if err := json.Unmarshal(pathsJSON, &paths); err != nil {
			return nil, fmt.Errorf("parse learning paths: %w", err)
		}
	}
	return New(challenges, paths)
}

// New validates the given content and indexes it by id.
func New(challenges []*models.Challenge, paths []models.LearningPath) (*Catalog, error) {
	v := validator.New()

	c := &Catalog{
		byID:   make(map[int]*models.Challenge, len(challenges)),
		paths:  paths,
		topics: make(map[int]*models.Topic),
	}

	for _, ch := range challenges {
		if ch == nil {
			return nil, fmt.Errorf("challenge entry is null")
		}
		if err := v.Validate(ch); err != nil {
			return nil, fmt.Errorf("challenge %d: %w", ch.ID, err)
		}
		if err := v.Content().ValidateChallenge(ch); err != nil {
			return nil, err
		}
		if _, dup := c.byID[ch.ID]; dup {
			return nil, fmt.Errorf("duplicate challenge id %d", ch.ID)
		}
		c.byID[ch.ID] = ch
		c.challenges = append(c.challenges, ch)
		c.totalPoints += ch.Points
		c.totalQuizzes += len(ch.Quizzes)
	}
	sort.Slice(c.challenges, func(i, j int) bool { return c.challenges[i].ID < c.challenges[j].ID })

	for i := range c.paths {
		p := &c.paths[i]
		if err := v.Validate(p); err != nil {
			return nil, fmt.Errorf("learning path %d: %w", p.ID, err)
		}
		for j := range p.Topics {
			t := &p.Topics[j]
			if _, dup := c.topics[t.ID]; dup {
				return nil, fmt.Errorf("duplicate topic id %d", t.ID)
			}
			c.topics[t.ID] = t
		}
	}

	return c, nil
}

// Challenge looks up a challenge by id.
func (c *Catalog) Challenge(id int) (*models.Challenge, bool) {
	ch, ok := c.byID[id]
	return ch, ok
}

// Challenges returns every challenge ordered by id. Callers must not modify
// the returned challenges.
func (c *Catalog) Challenges() []*models.Challenge {
	return c.challenges
}

func (c *Catalog) Topic(id int) (*models.Topic, bool) {
	t, ok := c.topics[id]
	return t, ok
}

func (c *Catalog) LearningPaths() []models.LearningPath {
	return c.paths
}

// TotalPossiblePoints is the sum of every challenge's points.
func (c *Catalog) TotalPossiblePoints() float64 {
	return c.totalPoints
}

// TotalQuizzes is the number of quizzes across all challenges.
func (c *Catalog) TotalQuizzes() int {
	return c.totalQuizzes
}

// Summaries returns the challenge listing without quizzes.
func (c *Catalog) Summaries() []models.ChallengeSummary {
	out := make([]models.ChallengeSummary, 0, len(c.challenges))
	for _, ch := range c.challenges {
		out = append(out, ch.Summary())
	}
	return out
}
