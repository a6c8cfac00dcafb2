package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokerequity/equity"
	"github.com/lox/pokerequity/internal/config"
	"github.com/lox/pokerequity/poker"
)

var (
	// Style definitions
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	equityStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	tieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	percentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	footerStyle = lipgloss.NewStyle().
			Faint(true)
)

func (c *CLI) run(ctx context.Context, out, errOut io.Writer, clock quartz.Clock) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if c.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(errOut, log.Options{Level: level})

	engine := cfg.Engine()
	if c.Workers > 0 {
		engine.Workers = c.Workers
	}

	req, err := c.request()
	if err != nil {
		return err
	}

	logger.Debug("Loaded config", "path", c.Config, "threshold", engine.Threshold, "trials", engine.Trials, "workers", engine.Workers)

	calc := equity.NewCalculator(equity.WithConfig(engine), equity.WithLogger(logger))

	start := clock.Now()
	res, err := calc.Compute(ctx, req)
	if err != nil {
		return err
	}
	elapsed := clock.Since(start)

	displayResults(out, req.Board, res, c.Possibilities, elapsed)
	return nil
}

func (c *CLI) request() (equity.Request, error) {
	req := equity.Request{
		UnknownPlayers: c.Unknown,
		Seed:           c.Seed,
		Trials:         c.Trials,
		Threshold:      c.Threshold,
	}

	var err error
	req.Players, err = parseHands(c.Hands)
	if err != nil {
		return req, err
	}
	if req.Board, err = parseCardList("board", c.Board); err != nil {
		return req, err
	}
	if req.Dead, err = parseCardList("dead", c.Dead); err != nil {
		return req, err
	}
	return req, nil
}

func parseHands(handStrings []string) ([]equity.Player, error) {
	players := make([]equity.Player, 0, len(handStrings))
	for i, handStr := range handStrings {
		handStr = strings.TrimSpace(handStr)
		if handStr == "-" || handStr == "" {
			players = append(players, equity.Player{})
			continue
		}
		hole, err := poker.ParseCards(handStr)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i+1, err)
		}
		players = append(players, equity.Player{Hole: hole})
	}
	return players, nil
}

func parseCardList(name, s string) ([]poker.Card, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	cards, err := poker.ParseCards(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cards, nil
}

func displayResults(w io.Writer, board []poker.Card, res *equity.Result, showPossibilities bool, duration time.Duration) {
	if len(board) > 0 {
		fmt.Fprintf(w, "%s\n", headerStyle.Render("board"))
		fmt.Fprintf(w, "%s\n\n", formatCards(board))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	sampled := res.Mode == equity.Sampled
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s",
		headerStyle.Render("hand"),
		headerStyle.Render("equity"),
		headerStyle.Render("win"),
		headerStyle.Render("tie"))
	if sampled {
		fmt.Fprintf(tw, "\t%s", headerStyle.Render("95% ci"))
	}
	fmt.Fprintf(tw, "\n")

	for _, p := range res.Players {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s",
			handStyle.Render(formatHole(p.Hole)),
			equityStyle.Render(fmt.Sprintf("%.2f%%", p.Equity)),
			fmt.Sprintf("%.2f%%", p.WinRate()*100),
			tieStyle.Render(fmt.Sprintf("%.2f%%", p.TieRate()*100)))
		if sampled {
			lo, hi := p.ConfidenceInterval()
			fmt.Fprintf(tw, "\t%.2f-%.2f%%", lo, hi)
		}
		fmt.Fprintf(tw, "\n")
	}
	tw.Flush()

	if showPossibilities && len(res.Players) > 0 {
		fmt.Fprintf(w, "\n")
		displayPossibilities(w, res.Players)
	}

	fmt.Fprintf(w, "\n")
	if sampled {
		fmt.Fprintf(w, "%s\n", footerStyle.Render(fmt.Sprintf("%d trials in %v (seed %d)", res.Trials, duration.Truncate(time.Millisecond), res.Seed)))
	} else {
		fmt.Fprintf(w, "%s\n", footerStyle.Render(fmt.Sprintf("%d outcomes enumerated in %v", res.Space, duration.Truncate(time.Millisecond))))
	}
}

func displayPossibilities(w io.Writer, players []equity.PlayerResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s", categoryStyle.Render("hand"))
	for _, p := range players {
		fmt.Fprintf(tw, "\t%s", handStyle.Render(formatHole(p.Hole)))
	}
	fmt.Fprintf(tw, "\n")

	// Strongest first
	for t := poker.StraightFlush; ; t-- {
		seen := false
		for _, p := range players {
			if p.HandTypes[t] > 0 {
				seen = true
				break
			}
		}
		if seen {
			fmt.Fprintf(tw, "%s", categoryStyle.Render(t.String()))
			for _, p := range players {
				count := p.HandTypes[t]
				if count > 0 {
					pct := float64(count) / float64(p.Total) * 100
					fmt.Fprintf(tw, "\t%s", percentStyle.Render(fmt.Sprintf("%.1f%%", pct)))
				} else {
					fmt.Fprintf(tw, "\t%s", percentStyle.Render("."))
				}
			}
			fmt.Fprintf(tw, "\n")
		}
		if t == poker.HighCard {
			break
		}
	}

	tw.Flush()
}

// formatHole renders known cards with "??" for each unknown one and appends
// the starting hand shorthand when both cards are known.
func formatHole(hole []poker.Card) string {
	parts := make([]string, 0, equity.HoleSize)
	for _, c := range hole {
		parts = append(parts, c.String())
	}
	for len(parts) < equity.HoleSize {
		parts = append(parts, "??")
	}
	s := strings.Join(parts, " ")
	if len(hole) == equity.HoleSize {
		s += " (" + poker.StartingHand(hole[0], hole[1]) + ")"
	}
	return s
}

func formatCards(cards []poker.Card) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}
