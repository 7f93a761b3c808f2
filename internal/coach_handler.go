package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/2beens/hyroxcoach/internal/coach"
	"github.com/2beens/hyroxcoach/internal/middleware"
	"github.com/2beens/hyroxcoach/internal/readiness"
	"github.com/2beens/hyroxcoach/internal/telemetry/tracing"
	"github.com/2beens/hyroxcoach/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxToolInputBytes = 1 << 20

var errNoSession = errors.New("no athlete session")

type registryBinder interface {
	Bind(binding coach.Binding) (*coach.Registry, error)
}

type readinessComputer interface {
	Compute(ctx context.Context, athleteID uuid.UUID) (*readiness.Result, error)
}

// CoachHandler serves the coaching tools of the session athlete over plain HTTP.
type CoachHandler struct {
	toolset     registryBinder
	scorer      readinessComputer
	versionInfo string
}

func NewCoachHandler(toolset registryBinder, scorer readinessComputer, versionInfo string) *CoachHandler {
	return &CoachHandler{
		toolset:     toolset,
		scorer:      scorer,
		versionInfo: versionInfo,
	}
}

// BindRequest returns the registry bound to the athlete of the request session.
func (h *CoachHandler) BindRequest(r *http.Request) (*coach.Registry, error) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return nil, errNoSession
	}
	return h.toolset.Bind(coach.Binding{
		AthleteID: session.AthleteID,
		UserID:    session.UserID,
	})
}

func (h *CoachHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteResponseBytes(w, "text/plain", []byte(fmt.Sprintf("hyrox coach %s", h.versionInfo)), http.StatusOK)
}

func (h *CoachHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteResponseBytes(w, "text/plain", []byte("ok"), http.StatusOK)
}

func (h *CoachHandler) HandleListTools(w http.ResponseWriter, r *http.Request) {
	registry, err := h.BindRequest(r)
	if err != nil {
		h.bindFailed(w, err)
		return
	}

	pkg.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"tools": registry.Tools(),
	})
}

func (h *CoachHandler) HandleInvokeTool(w http.ResponseWriter, r *http.Request) {
	registry, err := h.BindRequest(r)
	if err != nil {
		h.bindFailed(w, err)
		return
	}

	name := mux.Vars(r)["name"]
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxToolInputBytes))
	if err != nil {
		log.Debugf("read tool input [%s]: %s", name, err)
		pkg.WriteJSONResponse(w, http.StatusBadRequest, map[string]any{
			"error": "failed to read request body",
		})
		return
	}

	result, err := registry.Invoke(r.Context(), name, raw)
	var verr *coach.ValidationError
	switch {
	case errors.As(err, &verr):
		pkg.WriteJSONResponse(w, http.StatusBadRequest, map[string]any{
			"error":    verr.Error(),
			"problems": verr.Problems,
		})
	case errors.Is(err, coach.ErrUnknownTool):
		pkg.WriteJSONResponse(w, http.StatusNotFound, map[string]any{
			"error": fmt.Sprintf("unknown tool: %s", name),
		})
	case err != nil:
		log.Errorf("invoke tool [%s]: %s", name, err)
		pkg.WriteJSONResponse(w, http.StatusInternalServerError, map[string]any{
			"error": "internal error",
		})
	default:
		pkg.WriteJSONResponse(w, http.StatusOK, result)
	}
}

func (h *CoachHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachHandler.readiness")
	defer span.End()

	session, ok := middleware.SessionFromContext(ctx)
	if !ok {
		h.bindFailed(w, errNoSession)
		return
	}

	result, err := h.scorer.Compute(ctx, session.AthleteID)
	if err != nil {
		span.RecordError(err)
		log.WithField("athlete_id", session.AthleteID).Errorf("compute readiness: %s", err)
		pkg.WriteJSONResponse(w, http.StatusInternalServerError, map[string]any{
			"error":   true,
			"message": "Unable to calculate readiness. Please try again.",
		})
		return
	}

	pkg.WriteJSONResponse(w, http.StatusOK, result)
}

func (h *CoachHandler) bindFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, errNoSession) {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	log.Errorf("bind coaching tools: %s", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
