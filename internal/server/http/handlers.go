package internalhttp

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Fuchsoria/genre-bandit/internal/app"
	"github.com/Fuchsoria/genre-bandit/internal/bandit"
	"github.com/Fuchsoria/genre-bandit/internal/metrics"
	"github.com/Fuchsoria/genre-bandit/internal/session"
	"github.com/Fuchsoria/genre-bandit/internal/simulation"
	"github.com/Fuchsoria/genre-bandit/internal/version"
	"github.com/gin-gonic/gin"
)

type SimulationBody struct {
	Genres        []string  `json:"genres"`
	Probabilities []float64 `json:"probabilities"`
	Rounds        int       `json:"rounds"`
	Epsilon       *float64  `json:"epsilon"`
	Seed          *uint64   `json:"seed"`
}

type PolicyBody struct {
	Policy  string   `json:"policy"`
	Epsilon *float64 `json:"epsilon"`
}

type FeedbackBody struct {
	Reward *int `json:"reward"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string       `json:"status"`
	Version version.Info `json:"version"`
}

type RunResponse struct {
	Policy  string             `json:"policy"`
	Result  *simulation.Result `json:"result"`
	Summary SummaryResponse    `json:"summary"`
}

type SimulationResponse struct {
	ID     string        `json:"id"`
	Genres []string      `json:"genres"`
	Runs   []RunResponse `json:"runs"`
}

type SessionResponse struct {
	ID           string   `json:"id"`
	Policy       string   `json:"policy"`
	Epsilon      float64  `json:"epsilon"`
	Genres       []string `json:"genres"`
	Waiting      bool     `json:"waiting"`
	CurrentArm   *int     `json:"currentArm,omitempty"`
	CurrentGenre string   `json:"currentGenre,omitempty"`
	Rounds       int      `json:"rounds"`
}

type GenreStats struct {
	Genre      string  `json:"genre"`
	Count      int     `json:"count"`
	Likes      float64 `json:"likes"`
	Mean       float64 `json:"mean"`
	Proportion float64 `json:"proportion"`
}

type SummaryResponse struct {
	Rounds      int          `json:"rounds"`
	TotalReward float64      `json:"totalReward"`
	Genres      []GenreStats `json:"genres"`
}

type Handlers struct {
	app     Application
	metrics *Metrics
}

func NewHandlers(application Application, m *Metrics) *Handlers {
	return &Handlers{app: application, metrics: m}
}

func newSummaryResponse(genres []string, s metrics.Summary) SummaryResponse {
	resp := SummaryResponse{
		Rounds:      s.Rounds(),
		TotalReward: s.TotalReward(),
		Genres:      make([]GenreStats, len(s.Counts)),
	}

	proportions := s.Proportions()
	for arm := range s.Counts {
		stats := GenreStats{
			Count:      s.Counts[arm],
			Likes:      s.Totals[arm],
			Mean:       s.Means[arm],
			Proportion: proportions[arm],
		}
		if arm < len(genres) {
			stats.Genre = genres[arm]
		}
		resp.Genres[arm] = stats
	}

	return resp
}

func newSessionResponse(v app.SessionView) SessionResponse {
	resp := SessionResponse{
		ID:      v.ID,
		Policy:  v.Policy.String(),
		Epsilon: v.Epsilon,
		Genres:  v.Genres,
		Waiting: v.Waiting,
		Rounds:  v.Rounds,
	}

	if v.Waiting {
		arm := v.CurrentArm
		resp.CurrentArm = &arm
		resp.CurrentGenre = v.CurrentGenre
	}

	return resp
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrAwaitingFeedback), errors.Is(err, session.ErrNotAwaitingFeedback):
		return http.StatusConflict
	case errors.Is(err, bandit.ErrInvalidArgument),
		errors.Is(err, bandit.ErrConfiguration),
		errors.Is(err, bandit.ErrUnsupportedOperation):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), MessageResponse{Message: err.Error()})
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: version.Get()})
}

func (h *Handlers) Simulate(c *gin.Context) {
	var body SimulationBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: err.Error()})

		return
	}

	req := app.SimulationRequest{
		Genres:        body.Genres,
		Probabilities: body.Probabilities,
		Rounds:        body.Rounds,
		Epsilon:       simulation.DefaultEpsilon,
		Seed:          simulation.DefaultSeed,
	}
	if body.Epsilon != nil {
		req.Epsilon = *body.Epsilon
	}
	if body.Seed != nil {
		req.Seed = *body.Seed
	}

	report, err := h.app.Simulate(c.Request.Context(), req)
	if err != nil {
		fail(c, err)

		return
	}

	resp := SimulationResponse{ID: report.ID, Genres: report.Genres, Runs: make([]RunResponse, len(report.Runs))}
	for i, run := range report.Runs {
		h.metrics.simulated(run.Kind.String())
		resp.Runs[i] = RunResponse{
			Policy:  run.Kind.String(),
			Result:  run.Result,
			Summary: newSummaryResponse(report.Genres, run.Summary),
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) SimulationHistory(c *gin.Context) {
	runs, err := h.app.SimulationHistory(c.Request.Context())
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, runs)
}

func (h *Handlers) bindPolicy(c *gin.Context) (bandit.Kind, float64, bool) {
	var body PolicyBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: err.Error()})

		return 0, 0, false
	}

	kind, epsilon := h.app.DefaultPolicy()
	if body.Policy != "" {
		parsed, err := bandit.ParseKind(body.Policy)
		if err != nil {
			fail(c, err)

			return 0, 0, false
		}
		kind = parsed
	}

	if body.Epsilon != nil {
		epsilon = *body.Epsilon
	}

	return kind, epsilon, true
}

func (h *Handlers) CreateSession(c *gin.Context) {
	kind, epsilon, ok := h.bindPolicy(c)
	if !ok {
		return
	}

	v, err := h.app.CreateSession(c.Request.Context(), kind, epsilon)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusCreated, newSessionResponse(v))
}

func (h *Handlers) GetSession(c *gin.Context) {
	v, err := h.app.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, newSessionResponse(v))
}

func (h *Handlers) ResetSession(c *gin.Context) {
	kind, epsilon, ok := h.bindPolicy(c)
	if !ok {
		return
	}

	v, err := h.app.ResetSession(c.Request.Context(), c.Param("id"), kind, epsilon)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, newSessionResponse(v))
}

func (h *Handlers) Start(c *gin.Context) {
	v, err := h.app.StartRecommendations(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)

		return
	}

	h.metrics.recommended(v.Policy.String(), v.CurrentGenre)
	c.JSON(http.StatusOK, newSessionResponse(v))
}

func (h *Handlers) Feedback(c *gin.Context) {
	var body FeedbackBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Reward == nil {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: "reward is required"})

		return
	}

	v, err := h.app.Feedback(c.Request.Context(), c.Param("id"), *body.Reward)
	if err != nil {
		fail(c, err)

		return
	}

	h.metrics.observed(v.Policy.String(), *body.Reward)
	h.metrics.recommended(v.Policy.String(), v.CurrentGenre)
	c.JSON(http.StatusOK, newSessionResponse(v))
}

func (h *Handlers) Summary(c *gin.Context) {
	h.summary(c, h.app.SessionSummary)
}

func (h *Handlers) Replay(c *gin.Context) {
	h.summary(c, h.app.ReplaySummary)
}

func (h *Handlers) summary(c *gin.Context, load func(ctx context.Context, id string) (metrics.Summary, error)) {
	id := c.Param("id")

	v, err := h.app.GetSession(c.Request.Context(), id)
	if err != nil {
		fail(c, err)

		return
	}

	s, err := load(c.Request.Context(), id)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, newSummaryResponse(v.Genres, s))
}

func (h *Handlers) DeleteSession(c *gin.Context) {
	if err := h.app.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}
