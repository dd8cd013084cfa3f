package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Fuchsoria/genre-bandit/internal/bandit"
	"github.com/Fuchsoria/genre-bandit/internal/session"
	"github.com/Fuchsoria/genre-bandit/internal/simulation"
	"github.com/Fuchsoria/genre-bandit/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type App struct {
	logger   Logger
	storage  Storage
	producer Producer

	genres        []string
	defaultKind   bandit.Kind
	defaultParams bandit.Params
	newSource     func() bandit.Source
	maxRounds     int
	maxGenres     int

	mu       sync.Mutex
	sessions map[string]*session.Session
}

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	GetInstance() *zap.Logger
}

type Storage interface {
	AddFeedbackEvent(ctx context.Context, event storage.FeedbackEvent) error
	GetFeedbackEvents(ctx context.Context, sessionID string) ([]storage.FeedbackEvent, error)
	ClearFeedbackEvents(ctx context.Context, sessionID string) error
	AddSimulationRun(ctx context.Context, run storage.SimulationRun) error
	GetSimulationRuns(ctx context.Context) ([]storage.SimulationRun, error)
}

type Producer interface {
	Publish(ctx context.Context, body []byte) error
}

type Option func(*App)

// WithGenres sets the arms of live sessions.
func WithGenres(genres []string) Option {
	return func(a *App) {
		if len(genres) > 0 {
			a.genres = append([]string(nil), genres...)
		}
	}
}

// WithDefaultPolicy sets the policy used when a caller does not name one.
func WithDefaultPolicy(kind bandit.Kind, params bandit.Params) Option {
	return func(a *App) {
		a.defaultKind = kind
		a.defaultParams = params
	}
}

// WithSimulationLimits bounds the rounds and genres of one Simulate call.
// Non-positive values keep the defaults.
func WithSimulationLimits(maxRounds, maxGenres int) Option {
	return func(a *App) {
		if maxRounds > 0 {
			a.maxRounds = maxRounds
		}

		if maxGenres > 0 {
			a.maxGenres = maxGenres
		}
	}
}

// WithSourceFactory replaces the random stream given to each new session.
func WithSourceFactory(factory func() bandit.Source) Option {
	return func(a *App) {
		a.newSource = factory
	}
}

func New(logger Logger, storage Storage, producer Producer, opts ...Option) *App {
	a := &App{
		logger:        logger,
		storage:       storage,
		producer:      producer,
		genres:        append([]string(nil), session.DefaultGenres...),
		defaultKind:   bandit.KindRandom,
		defaultParams: bandit.Params{Epsilon: simulation.DefaultEpsilon},
		newSource: func() bandit.Source {
			return bandit.NewSource(uint64(time.Now().UnixNano()))
		},
		maxRounds: simulation.DefaultMaxRounds,
		maxGenres: simulation.DefaultMaxGenres,
		sessions:  make(map[string]*session.Session),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *App) GetLogger() Logger {
	return a.logger
}

func (a *App) GetStorage() Storage {
	return a.storage
}

func (a *App) DefaultPolicy() (bandit.Kind, float64) {
	return a.defaultKind, a.defaultParams.Epsilon
}

func (a *App) Genres() []string {
	return append([]string(nil), a.genres...)
}

func (a *App) publish(ctx context.Context, event interface{}) {
	body, err := json.Marshal(event)
	if err != nil {
		a.logger.Error("cannot encode event", "error", err)

		return
	}

	if err := a.producer.Publish(ctx, body); err != nil {
		a.logger.Warn("cannot publish event", "error", err)
	}
}

type SimulationRequest struct {
	Genres        []string
	Probabilities []float64
	Rounds        int
	Epsilon       float64
	Seed          uint64
}

type SimulationReport struct {
	ID     string
	Genres []string
	Runs   []simulation.Run
}

type simulationEvent struct {
	Type        string  `json:"type"`
	ReportID    string  `json:"reportId"`
	Policy      string  `json:"policy"`
	Rounds      int     `json:"rounds"`
	BestArm     int     `json:"bestArm"`
	TotalReward float64 `json:"totalReward"`
	PctOptimal  float64 `json:"pctOptimal"`
}

// Simulate compares every policy on the requested problem. Missing genres fall
// back to the default simulated catalogue and a zero round count to the default.
func (a *App) Simulate(ctx context.Context, req SimulationRequest) (*SimulationReport, error) {
	if len(req.Genres) == 0 {
		req.Genres = simulation.DefaultGenres
		if req.Probabilities == nil {
			req.Probabilities = simulation.DefaultProbabilities
		}
	}

	if req.Rounds == 0 {
		req.Rounds = simulation.DefaultRounds
	}

	if err := a.checkSimulation(req); err != nil {
		return nil, err
	}

	runs, err := simulation.Compare(ctx, simulation.CompareConfig{
		Labels:        req.Genres,
		Probabilities: req.Probabilities,
		Rounds:        req.Rounds,
		Epsilon:       req.Epsilon,
		Seed:          req.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot run simulation, %w", err)
	}

	report := &SimulationReport{
		ID:     uuid.NewString(),
		Genres: append([]string(nil), req.Genres...),
		Runs:   runs,
	}

	for _, run := range runs {
		last := req.Rounds - 1
		record := storage.SimulationRun{
			ID:          uuid.NewString(),
			Policy:      run.Kind.String(),
			Rounds:      req.Rounds,
			Epsilon:     req.Epsilon,
			Seed:        int64(req.Seed),
			BestArm:     run.Result.BestArm,
			TotalReward: run.Result.CumulativeReward[last],
			PctOptimal:  run.Result.PctOptimal[last],
			Date:        time.Now(),
		}

		if err := a.storage.AddSimulationRun(ctx, record); err != nil {
			a.logger.Warn("cannot store simulation run", "policy", record.Policy, "error", err)
		}

		a.publish(ctx, simulationEvent{
			Type:        "simulation",
			ReportID:    report.ID,
			Policy:      record.Policy,
			Rounds:      record.Rounds,
			BestArm:     record.BestArm,
			TotalReward: record.TotalReward,
			PctOptimal:  record.PctOptimal,
		})

		a.logger.Info("simulation finished",
			"report", report.ID,
			"policy", record.Policy,
			"rounds", record.Rounds,
			"totalReward", record.TotalReward,
			"pctOptimal", record.PctOptimal)
	}

	return report, nil
}

func (a *App) checkSimulation(req SimulationRequest) error {
	if req.Rounds > a.maxRounds {
		return fmt.Errorf("rounds %d above limit %d: %w", req.Rounds, a.maxRounds, bandit.ErrInvalidArgument)
	}

	if len(req.Genres) > a.maxGenres {
		return fmt.Errorf("%d genres above limit %d: %w", len(req.Genres), a.maxGenres, bandit.ErrInvalidArgument)
	}

	// the journal keeps seeds in a signed bigint column
	if req.Seed > math.MaxInt64 {
		return fmt.Errorf("seed %d above %d: %w", req.Seed, int64(math.MaxInt64), bandit.ErrInvalidArgument)
	}

	return nil
}

func (a *App) SimulationHistory(ctx context.Context) ([]storage.SimulationRun, error) {
	return a.storage.GetSimulationRuns(ctx)
}
