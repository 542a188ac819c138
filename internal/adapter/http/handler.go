package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"timeherosim/internal/app/journal"
	"timeherosim/internal/app/ports"
	"timeherosim/internal/app/replay"
	"timeherosim/internal/app/session"
	"timeherosim/internal/app/sim"
	"timeherosim/internal/domain/game"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// runIDHeader is echoed on every simulation response.
const runIDHeader = "X-Run-ID"

const maxCatchUpMinutes = 7 * 24 * 60

var (
	ErrInvalidAction  = errors.New("action type is required")
	ErrInvalidMinutes = errors.New("catch-up minutes out of range")
)

type Handler struct {
	Sessions *session.Manager
	ReplayUC replay.UseCase
	// Runs lists persisted runs; nil disables /api/runs.
	Runs ports.RunRepository
	KPI  kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	g := s.Group("/api/sim")
	g.POST("/initialize", h.initialize)
	g.POST("/start", h.start)
	g.POST("/pause", h.pause)
	g.POST("/stop", h.stop)
	g.POST("/speed", h.speed)
	g.GET("/status", h.status)
	g.GET("/state", h.state)
	g.POST("/step", h.step)
	g.POST("/action", h.action)
	g.POST("/catchup", h.catchUp)
	g.GET("/bottlenecks", h.bottlenecks)
	g.GET("/rolls", h.rolls)
	g.GET("/snapshot", h.snapshot)
	g.POST("/restore", h.restore)

	runs := s.Group("/api/runs")
	runs.GET("", h.listRuns)
	runs.GET("/:run_id", h.getRun)
	runs.GET("/:run_id/events", h.replay)

	s.GET("/ops/kpi", h.kpi)
}

type speedRequest struct {
	Speed float64 `json:"speed"`
}

type catchUpRequest struct {
	Minutes int `json:"minutes"`
}

func (h Handler) initialize(c context.Context, ctx *app.RequestContext) {
	var body session.InitRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	runID, err := h.Sessions.Initialize(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Response.Header.Set(runIDHeader, runID)
	ctx.JSON(consts.StatusCreated, map[string]string{"run_id": runID})
}

func (h Handler) start(c context.Context, ctx *app.RequestContext) {
	body := speedRequest{Speed: 1}
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	r, ok := h.runner(ctx)
	if !ok {
		return
	}
	if err := r.Start(c, body.Speed); err != nil {
		writeError(ctx, err)
		return
	}
	h.writeStatus(c, ctx, r)
}

func (h Handler) pause(c context.Context, ctx *app.RequestContext) {
	r, ok := h.runner(ctx)
	if !ok {
		return
	}
	if err := r.Pause(c); err != nil {
		writeError(ctx, err)
		return
	}
	h.writeStatus(c, ctx, r)
}

func (h Handler) stop(c context.Context, ctx *app.RequestContext) {
	r, ok := h.runner(ctx)
	if !ok {
		return
	}
	done, err := r.Stop(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, done)
}

func (h Handler) speed(c context.Context, ctx *app.RequestContext) {
	var body speedRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	r, ok := h.runner(ctx)
	if !ok {
		return
	}
	if err := r.SetSpeed(c, body.Speed); err != nil {
		writeError(ctx, err)
		return
	}
	h.writeStatus(c, ctx, r)
}

func (h Handler) status(c context.Context, ctx *app.RequestContext) {
	r, ok := h.runner(ctx)
	if !ok {
		return
	}
	h.writeStatus(c, ctx, r)
}

func (h Handler) writeStatus(c context.Context, ctx *app.RequestContext, r *sim.Runner) {
	st, err := r.Status(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, st)
}

func (h Handler) state(c context.Context, ctx *app.RequestContext) {
	r, ok := h.runner(ctx)
	if !ok {
		return
	}
	view, err := r.GetState(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, view)
}

func (h Handler) step(c context.Context, ctx *app.RequestContext) {
	r, ok := h.runner(ctx)
	if !ok {
		return
	}
	res, err := r.Step(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, res)
}

func (h Handler) action(c context.Context, ctx *app.RequestContext) {
	var body game.Action
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if strings.TrimSpace(string(body.Type)) == "" {
		writeError(ctx, ErrInvalidAction)
		return
	}
	r, ok := h.runner(ctx)
	if !ok {
		return
	}
	res, err := r.Route(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if !res.Success {
		writeActionRejected(ctx, body, res)
		return
	}
	ctx.JSON(consts.StatusOK, res)
}

func (h Handler) catchUp(c context.Context, ctx *app.RequestContext) {
	var body catchUpRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.Minutes <= 0 || body.Minutes > maxCatchUpMinutes {
		writeError(ctx, ErrInvalidMinutes)
		return
	}
	r, ok := h.runner(ctx)
	if !ok {
		return
	}
	res, err := r.CatchUp(c, body.Minutes)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, res)
}

func (h Handler) bottlenecks(c context.Context, ctx *app.RequestContext) {
	r, ok := h.runner(ctx)
	if !ok {
		return
	}
	out, err := r.Bottlenecks(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"bottlenecks": out})
}

func (h Handler) rolls(c context.Context, ctx *app.RequestContext) {
	r, ok := h.runner(ctx)
	if !ok {
		return
	}
	st, err := r.RollStatistics(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, st)
}

func (h Handler) snapshot(c context.Context, ctx *app.RequestContext) {
	r, ok := h.runner(ctx)
	if !ok {
		return
	}
	snap, err := r.Snapshot(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, snap)
}

func (h Handler) restore(c context.Context, ctx *app.RequestContext) {
	var snap sim.Snapshot
	if err := decodeJSON(ctx, &snap); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	r, ok := h.runner(ctx)
	if !ok {
		return
	}
	if err := r.Restore(c, snap); err != nil {
		writeError(ctx, err)
		return
	}
	h.writeStatus(c, ctx, r)
}

func (h Handler) listRuns(c context.Context, ctx *app.RequestContext) {
	if h.Runs == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "run storage not configured")
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	runs, err := h.Runs.List(c, limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"runs": runs})
}

func (h Handler) getRun(c context.Context, ctx *app.RequestContext) {
	if h.Runs == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "run storage not configured")
		return
	}
	run, err := h.Runs.Get(c, string(ctx.Param("run_id")))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, run)
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	from, _ := strconv.Atoi(string(ctx.Query("from_minute")))
	to, _ := strconv.Atoi(string(ctx.Query("to_minute")))
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		RunID:      string(ctx.Param("run_id")),
		Limit:      limit,
		FromMinute: from,
		ToMinute:   to,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

// runner writes the error response itself when there is no live session.
func (h Handler) runner(ctx *app.RequestContext) (*sim.Runner, bool) {
	if h.Sessions == nil {
		writeError(ctx, session.ErrNoSession)
		return nil, false
	}
	r, err := h.Sessions.Runner()
	if err != nil {
		writeError(ctx, err)
		return nil, false
	}
	ctx.Response.Header.Set(runIDHeader, h.Sessions.RunID())
	return r, true
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, session.ErrNoSession):
		writeErrorBody(ctx, consts.StatusConflict, "not_initialized", err.Error())
	case errors.Is(err, sim.ErrCompleted):
		writeErrorBody(ctx, consts.StatusConflict, "simulation_completed", err.Error())
	case errors.Is(err, sim.ErrRunnerClosed):
		writeErrorBody(ctx, consts.StatusConflict, "runner_closed", err.Error())
	case errors.Is(err, sim.ErrInvalidConfig):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_config", err.Error())
	case errors.Is(err, sim.ErrInvalidSnapshot):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_snapshot", err.Error())
	case errors.Is(err, ErrInvalidAction):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_action", err.Error())
	case errors.Is(err, ErrInvalidMinutes),
		errors.Is(err, replay.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, journal.ErrNoSnapshot):
		writeErrorBody(ctx, consts.StatusNotFound, "snapshot_not_found", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "cancelled", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// writeActionRejected reports a routed action that failed validation. The
// simulation state is unchanged.
func writeActionRejected(ctx *app.RequestContext, a game.Action, res game.ActionResult) {
	ctx.JSON(consts.StatusConflict, map[string]any{
		"result_code":   "REJECTED",
		"success":       false,
		"events":        res.Events,
		"state_changes": res.StateChanges,
		"error": map[string]any{
			"code":    "action_rejected",
			"message": res.Error,
			"details": map[string]any{
				"type":   a.Type,
				"target": a.Target,
			},
		},
	})
}
