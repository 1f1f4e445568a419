package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cyberguard/awareness-service/internal/models"
	"github.com/cyberguard/awareness-service/internal/services"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Take a challenge in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetString("client")
		challengeID, _ := cmd.Flags().GetInt("challenge")

		return withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
			p := &player{
				svc:   a.services.Progress(),
				actor: services.Actor{ClientID: clientID},
				in:    bufio.NewScanner(cmd.InOrStdin()),
				out:   cmd.OutOrStdout(),
			}
			return p.run(ctx, a.services.Catalog().Summaries(), challengeID)
		})
	},
}

func init() {
	playCmd.Flags().String("client", "cli", "Client id owning the progress")
	playCmd.Flags().Int("challenge", 0, "Challenge to start (prompts when omitted)")
}

var errQuit = errors.New("quit")

type player struct {
	svc   services.ProgressService
	actor services.Actor
	in    *bufio.Scanner
	out   io.Writer
}

func (p *player) run(ctx context.Context, challenges []models.ChallengeSummary, challengeID int) error {
	if challengeID == 0 {
		fmt.Fprintln(p.out, "Challenges:")
		for _, c := range challenges {
			fmt.Fprintf(p.out, "  %d. %s (%s, %.0f points)\n", c.ID, c.Title, c.Difficulty, c.Points)
		}
		line, err := p.prompt("Pick a challenge: ")
		if err != nil {
			return nil
		}
		if challengeID, err = strconv.Atoi(line); err != nil {
			return fmt.Errorf("invalid challenge %q", line)
		}
	}

	session, err := p.svc.StartChallenge(ctx, p.actor, challengeID)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "\n%s: %d questions\n", session.Challenge.Title, session.QuizCount)

	for !session.Complete {
		resp, err := p.ask(ctx, session)
		if errors.Is(err, errQuit) {
			fmt.Fprintln(p.out, "Progress saved. Run play again to start over.")
			return nil
		}
		if err != nil {
			return err
		}

		if resp.Result.Correct {
			fmt.Fprintln(p.out, "Correct!")
		} else {
			fmt.Fprintln(p.out, "Not quite.")
		}
		if resp.Result.Explanation != "" {
			fmt.Fprintln(p.out, resp.Result.Explanation)
		}
		for _, ach := range resp.NewAchievements {
			fmt.Fprintf(p.out, "Achievement unlocked: %s\n", ach.Title)
		}
		if resp.Result.ChallengeCompleted {
			fmt.Fprintf(p.out, "\nChallenge complete: %d%% correct, %.0f points earned\n",
				resp.Result.RunScore, resp.Progress.TotalPoints)
			fmt.Fprintf(p.out, "Level: %s (%.0f%%)\n", resp.Progress.Level, resp.Progress.LevelProgress)
		}
		session = resp.Session
	}
	return nil
}

func (p *player) ask(ctx context.Context, session *services.SessionView) (*services.SubmitResponse, error) {
	q := session.Quiz
	fmt.Fprintf(p.out, "\n[%d/%d] %s\n", session.QuizIndex+1, session.QuizCount, q.Question)

	req := &services.SubmitRequest{}
	switch q.Kind {
	case models.KindMultipleChoice, models.KindScenario:
		listItems(p.out, q.Options)
		line, err := p.prompt("Answer (number): ")
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			n = 0
		}
		req.Answer = encodeAnswer(n - 1)
	case models.KindMatching, models.KindDragDrop:
		listItems(p.out, q.Options)
		if len(q.Matches) > 0 {
			fmt.Fprintln(p.out, "Match against:")
			listItems(p.out, q.Matches)
		}
		line, err := p.prompt("Order (comma separated numbers): ")
		if err != nil {
			return nil, err
		}
		req.Answer = encodeAnswer(parseIndexes(line))
	case models.KindURLAnalyzer, models.KindRedFlags, models.KindSpotDifference:
		items := q.URLs
		if q.Kind == models.KindRedFlags {
			items = q.Flags
		}
		if q.Kind == models.KindSpotDifference {
			items = make([]string, len(q.Hotspots))
			for i, h := range q.Hotspots {
				items[i] = h.Label
			}
		}
		listItems(p.out, items)
		line, err := p.prompt("Select all that apply (comma separated numbers): ")
		if err != nil {
			return nil, err
		}
		req.Answer = encodeAnswer(parseIndexes(line))
	case models.KindInteractive:
		if q.GradedByPassword() {
			fmt.Fprintln(p.out, "Requirements:")
			for _, r := range q.Requirements {
				fmt.Fprintf(p.out, "  - %s\n", r)
			}
			line, err := p.prompt("Password: ")
			if err != nil {
				return nil, err
			}
			req.Password = &line
			break
		}
		listItems(p.out, q.Elements)
		line, err := p.prompt("Done? (y/n): ")
		if err != nil {
			return nil, err
		}
		req.Answer = encodeAnswer(strings.HasPrefix(strings.ToLower(line), "y"))
	default:
		return nil, fmt.Errorf("unsupported quiz type %q", q.Kind)
	}

	return p.svc.SubmitAnswer(ctx, p.actor, req)
}

// prompt reads one line. "q" or end of input quits.
func (p *player) prompt(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	line := strings.TrimSpace(p.in.Text())
	if line == "q" {
		return "", errQuit
	}
	return line, nil
}

func listItems(w io.Writer, items []string) {
	for i, item := range items {
		fmt.Fprintf(w, "  %d. %s\n", i+1, item)
	}
}

// parseIndexes turns "3, 1,2" into zero-based [2 0 1], skipping junk
func parseIndexes(line string) []int {
	out := []int{}
	for _, field := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' }) {
		if n, err := strconv.Atoi(field); err == nil {
			out = append(out, n-1)
		}
	}
	return out
}

func encodeAnswer(v any) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}
