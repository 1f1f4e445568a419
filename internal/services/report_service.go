package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cyberguard/awareness-service/internal/content"
	"github.com/cyberguard/awareness-service/internal/models"
	"github.com/cyberguard/awareness-service/internal/repositories"
)

// ReportService lists score history and renders progress and scores as
// XLSX workbooks
type ReportService interface {
	ListScores(ctx context.Context, userID uint, filters repositories.ScoreFilters) (*ScoreList, error)
	ExportProgress(ctx context.Context, clientID string) ([]byte, error)
	ExportScores(ctx context.Context, userID uint) ([]byte, error)
}

type ScoreEntry struct {
	*models.UserScore
	ChallengeTitle string `json:"challenge_title"`
}

type ScoreList struct {
	Scores []ScoreEntry `json:"scores"`
	Total  int64        `json:"total"`
	Best   map[int]int  `json:"best"` // challenge id to best score
}

type reportService struct {
	progress ProgressService
	catalog  *content.Catalog
	scores   repositories.ScoreRepository
	logger   *slog.Logger
}

func NewReportService(progress ProgressService, catalog *content.Catalog, scores repositories.ScoreRepository, logger *slog.Logger) ReportService {
	return &reportService{
		progress: progress,
		catalog:  catalog,
		scores:   scores,
		logger:   logger,
	}
}

const (
	sheetSummary    = "Summary"
	sheetChallenges = "Challenges"
	sheetLearning   = "Learning"
	sheetScores     = "Scores"
)

func (s *reportService) ListScores(ctx context.Context, userID uint, filters repositories.ScoreFilters) (*ScoreList, error) {
	if s.scores == nil {
		return nil, ErrAuthDisabled
	}

	scores, total, err := s.scores.ListByUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get scores: %w", err)
	}
	best, err := s.scores.BestByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get best scores: %w", err)
	}

	list := &ScoreList{Scores: make([]ScoreEntry, 0, len(scores)), Total: total, Best: best}
	for _, sc := range scores {
		list.Scores = append(list.Scores, ScoreEntry{UserScore: sc, ChallengeTitle: s.challengeTitle(sc.TestID)})
	}
	return list, nil
}

func (s *reportService) ExportProgress(ctx context.Context, clientID string) ([]byte, error) {
	view, err := s.progress.GetProgress(ctx, clientID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	// Summary
	if err := newSheet(f, sheetSummary, []string{"Metric", "Value"}); err != nil {
		return nil, err
	}
	st := view.Stats
	summary := [][]interface{}{
		{"Level", st.Level},
		{"Level progress (%)", st.LevelProgress},
		{"Points earned", st.PointsEarned},
		{"Total points", st.TotalPoints},
		{"Points (%)", st.PointsPercent},
		{"Challenges completed", fmt.Sprintf("%d / %d", st.ChallengesCompleted, st.TotalChallenges)},
		{"Quizzes completed", fmt.Sprintf("%d / %d", st.QuizzesCompleted, st.TotalQuizzes)},
		{"Learning level", string(view.Learning.CurrentLevel)},
		{"Learning time (minutes)", view.Learning.TimeSpent},
	}
	if err := writeRows(f, sheetSummary, summary); err != nil {
		return nil, err
	}

	// Challenges
	if err := newSheet(f, sheetChallenges, []string{"ID", "Title", "Difficulty", "Points", "Quizzes", "Completed"}); err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(s.catalog.Challenges()))
	for _, c := range s.catalog.Challenges() {
		rows = append(rows, []interface{}{
			c.ID, c.Title, string(c.Difficulty), c.Points, len(c.Quizzes), yesNo(view.Progress.HasCompleted(c.ID)),
		})
	}
	if err := writeRows(f, sheetChallenges, rows); err != nil {
		return nil, err
	}

	// Learning
	if err := newSheet(f, sheetLearning, []string{"Path", "Topic ID", "Topic", "Type", "Minutes", "Completed"}); err != nil {
		return nil, err
	}
	rows = rows[:0]
	for _, path := range s.catalog.LearningPaths() {
		for _, t := range path.Topics {
			rows = append(rows, []interface{}{
				path.Title, t.ID, t.Title, string(t.Type), t.DurationMinutes, yesNo(view.Learning.HasCompletedTopic(t.ID)),
			})
		}
	}
	if err := writeRows(f, sheetLearning, rows); err != nil {
		return nil, err
	}

	return finish(f, sheetSummary)
}

func (s *reportService) ExportScores(ctx context.Context, userID uint) ([]byte, error) {
	if s.scores == nil {
		return nil, ErrAuthDisabled
	}

	scores, _, err := s.scores.ListByUser(ctx, userID, repositories.ScoreFilters{SortBy: "completed_at", SortOrder: "asc"})
	if err != nil {
		return nil, fmt.Errorf("failed to get scores: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := newSheet(f, sheetScores, []string{"Challenge ID", "Challenge", "Score (%)", "Completed At"}); err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(scores))
	for _, sc := range scores {
		rows = append(rows, []interface{}{sc.TestID, s.challengeTitle(sc.TestID), sc.Score, sc.CompletedAt.UTC().Format(time.RFC3339)})
	}
	if err := writeRows(f, sheetScores, rows); err != nil {
		return nil, err
	}

	s.logger.Debug("Exported score history", "user_id", userID, "rows", len(rows))
	return finish(f, sheetScores)
}

// challengeTitle names a challenge id, including ids no longer in the catalog
func (s *reportService) challengeTitle(id int) string {
	if c, ok := s.catalog.Challenge(id); ok {
		return c.Title
	}
	return fmt.Sprintf("Challenge %d", id)
}

// ===== WORKBOOK HELPERS =====

func newSheet(f *excelize.File, name string, headers []string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, header); err != nil {
			return err
		}
	}
	return nil
}

// writeRows writes rows below the header line
func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, r+2, err)
		}
	}
	return nil
}

func finish(f *excelize.File, active string) ([]byte, error) {
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	index, err := f.GetSheetIndex(active)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
