package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"StockAdvisor/internal/model"
	"StockAdvisor/internal/notifier"
)

// Runner runs analyses.
type Runner interface {
	Run(ctx context.Context, symbols []string, budget float64) (*model.AnalysisResult, error)
	RunInput(ctx context.Context, input string, budget float64) (*model.AnalysisResult, error)
}

// Sender delivers reports.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the watchlist on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron          *cron.Cron
	Runner        Runner
	Notifier      Sender
	Watchlist     []string
	Budget        float64
	DefaultBudget float64
	Ctx           context.Context
}

// NewScheduler creates a new Scheduler. Watchlist runs use budget; chat commands without a
// budget use defaultBudget.
func NewScheduler(ctx context.Context, r Runner, n Sender, watchlist []string, budget, defaultBudget float64) *Scheduler {
	return &Scheduler{
		Cron:          cron.New(cron.WithSeconds()),
		Runner:        r,
		Notifier:      n,
		Watchlist:     watchlist,
		Budget:        budget,
		DefaultBudget: defaultBudget,
		Ctx:           ctx,
	}
}

// Register adds the watchlist job. An empty watchlist registers nothing.
func (s *Scheduler) Register(watchlistCron string) error {
	if len(s.Watchlist) == 0 {
		log.Info().Msg("watchlist is empty, no scheduled analysis")
		return nil
	}
	if _, err := s.Cron.AddFunc(watchlistCron, s.watchlistTask); err != nil {
		return fmt.Errorf("register watchlist task: %w", err)
	}
	log.Info().Str("cron", watchlistCron).Strs("watchlist", s.Watchlist).Msg("watchlist task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunWatchlistNow executes the watchlist task immediately.
func (s *Scheduler) RunWatchlistNow() {
	s.watchlistTask()
}

func (s *Scheduler) watchlistTask() {
	log.Info().Strs("watchlist", s.Watchlist).Msg("running watchlist analysis")
	s.trySend(s.analyze(s.Ctx, s.Watchlist, s.Budget))
}

func (s *Scheduler) analyze(ctx context.Context, symbols []string, budget float64) string {
	res, err := s.Runner.Run(ctx, symbols, budget)
	return s.reply(res, err)
}

func (s *Scheduler) reply(res *model.AnalysisResult, err error) string {
	var ffe *model.FetchFailureError
	switch {
	case err == nil:
		return notifier.FormatAnalysisReport(res)
	case errors.As(err, &ffe):
		return notifier.FormatFetchError(res, err)
	case errors.Is(err, model.ErrNoSymbols), errors.Is(err, model.ErrInvalidBudget):
		return "❌ " + err.Error()
	default:
		log.Error().Err(err).Msg("analysis failed")
		return fmt.Sprintf("❌ analysis failed: %v", err)
	}
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	name, args, _ := strings.Cut(strings.TrimSpace(command), " ")
	name, _, _ = strings.Cut(name, "@")

	switch name {
	case "/analyze":
		input, budget, err := parseAnalyzeArgs(args, s.DefaultBudget)
		if err != nil {
			return "❌ " + err.Error()
		}
		res, err := s.Runner.RunInput(ctx, input, budget)
		return s.reply(res, err)
	case "/watchlist":
		if len(s.Watchlist) == 0 {
			return "Watchlist is empty."
		}
		return s.analyze(ctx, s.Watchlist, s.Budget)
	default:
		return notifier.FormatHelp(s.DefaultBudget)
	}
}

// parseAnalyzeArgs splits "AAPL, MSFT 500" into the symbol text and an optional trailing budget.
func parseAnalyzeArgs(args string, defaultBudget float64) (string, float64, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return args, defaultBudget, nil
	}
	last := fields[len(fields)-1]
	budget, err := strconv.ParseFloat(last, 64)
	if err != nil {
		if strings.ContainsAny(last[:1], "0123456789-.") {
			return "", 0, fmt.Errorf("%w: %q is not a number", model.ErrInvalidBudget, last)
		}
		return args, defaultBudget, nil
	}
	return strings.Join(fields[:len(fields)-1], " "), budget, nil
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
