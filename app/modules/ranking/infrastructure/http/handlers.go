package rankinghttp

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	rankingservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/application"
	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	rankingqueue "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/queue"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Handlers serves leaderboards over HTTP.
type Handlers struct {
	service  rankingservice.Service
	enqueuer rankingqueue.Enqueuer
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewHandlers creates the ranking HTTP handlers. enqueuer may be nil, in
// which case rebuild requests are answered with 503.
func NewHandlers(service rankingservice.Service, enqueuer rankingqueue.Enqueuer, logger *slog.Logger, tracer trace.Tracer) *Handlers {
	return &Handlers{
		service:  service,
		enqueuer: enqueuer,
		logger:   logger,
		tracer:   tracer,
	}
}

type entryResponse struct {
	MemberID         string    `json:"member_id"`
	Rank             int       `json:"rank"`
	Position         int       `json:"position"`
	TotalPoints      int       `json:"total_points"`
	TotalMiles       float64   `json:"total_miles"`
	EventsCount      int       `json:"events_count"`
	VisitorClass     string    `json:"visitor_class"`
	LastCalculatedAt time.Time `json:"last_calculated_at"`
}

type pageResponse struct {
	TenantID  string          `json:"tenant_id"`
	Year      int             `json:"year"`
	ScopeType string          `json:"scope_type"`
	ScopeID   string          `json:"scope_id"`
	Skip      int             `json:"skip"`
	Take      int             `json:"take"`
	Total     int             `json:"total"`
	Entries   []entryResponse `json:"entries"`
}

type rebuildRequest struct {
	ScopeType string `json:"scope_type"`
	ScopeID   string `json:"scope_id"`
}

type rebuildResponse struct {
	JobID int64  `json:"job_id"`
	Scope string `json:"scope"`
}

func toEntryResponse(e rankingservice.RankingEntry) entryResponse {
	return entryResponse{
		MemberID:         e.MemberID.String(),
		Rank:             e.Rank,
		Position:         e.Position,
		TotalPoints:      e.TotalPoints,
		TotalMiles:       e.TotalMiles,
		EventsCount:      e.EventsCount,
		VisitorClass:     string(e.VisitorClass),
		LastCalculatedAt: e.LastCalculatedAt,
	}
}

// partitionParams is the tenant/year/scope addressed by a request path.
type partitionParams struct {
	tenantID  uuid.UUID
	year      int
	scopeType rankingdomain.ScopeType
	scopeID   string
}

func parsePartition(r *http.Request) (partitionParams, error) {
	var p partitionParams
	var err error

	if p.tenantID, err = uuid.Parse(chi.URLParam(r, "tenantID")); err != nil {
		return p, errors.New("invalid tenant id")
	}
	if p.year, err = strconv.Atoi(chi.URLParam(r, "year")); err != nil {
		return p, errors.New("invalid year")
	}
	if p.scopeType, err = rankingdomain.ParseScopeType(chi.URLParam(r, "scopeType")); err != nil {
		return p, err
	}
	p.scopeID = r.URL.Query().Get("scope_id")
	return p, nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// HandleGetRanking serves one page of a leaderboard.
func (h *Handlers) HandleGetRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "rankinghttp.GetRanking")
	defer span.End()

	p, err := parsePartition(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid skip")
		return
	}
	take, err := queryInt(r, "take", rankingdomain.DefaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid take")
		return
	}

	page, err := h.service.GetRanking(ctx, p.tenantID, p.year, p.scopeType, p.scopeID, skip, take)
	if err != nil {
		h.writeServiceError(w, r, "get ranking", err)
		return
	}

	resp := pageResponse{
		TenantID:  page.Partition.TenantID.String(),
		Year:      page.Partition.Year,
		ScopeType: string(page.Partition.Scope.Type),
		ScopeID:   page.Partition.Scope.ID,
		Skip:      page.Skip,
		Take:      page.Take,
		Total:     page.Total,
		Entries:   make([]entryResponse, len(page.Entries)),
	}
	for i, e := range page.Entries {
		resp.Entries[i] = toEntryResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetMember serves one member's row with their live rank.
func (h *Handlers) HandleGetMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "rankinghttp.GetMember")
	defer span.End()

	p, err := parsePartition(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	memberID, err := uuid.Parse(chi.URLParam(r, "memberID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	res, err := h.service.GetMemberRanking(ctx, p.tenantID, p.year, p.scopeType, p.scopeID, memberID)
	if err != nil {
		h.writeServiceError(w, r, "get member ranking", err)
		return
	}
	if !res.Found {
		writeError(w, http.StatusNotFound, "member has no ranking in this scope")
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(res.Entry))
}

// HandleRebuild enqueues an asynchronous rebuild for the tenant and year.
// The caller must be an admin of the tenant.
func (h *Handlers) HandleRebuild(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "rankinghttp.Rebuild")
	defer span.End()

	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}

	claims, ok := ClaimsFrom(ctx)
	if !ok || !claims.CanAdminister(tenantID.String()) {
		writeError(w, http.StatusForbidden, "admin role required for this tenant")
		return
	}
	if h.enqueuer == nil {
		writeError(w, http.StatusServiceUnavailable, "background jobs are disabled")
		return
	}

	var req rebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scope := "ALL"
	if req.ScopeType != "" {
		scopeType, err := rankingdomain.ParseScopeType(req.ScopeType)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.ScopeType = string(scopeType)
		scope = rankingdomain.Scope{Type: scopeType, ID: req.ScopeID}.Normalize().String()
	} else if req.ScopeID != "" {
		writeError(w, http.StatusBadRequest, "scope_id requires scope_type")
		return
	}

	if _, err := rankingdomain.NewPartition(tenantID, year, rankingdomain.ScopeGlobal, ""); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID, err := h.enqueuer.EnqueueRebuild(ctx, rankingqueue.RebuildScopeJob{
		TenantID:    tenantID.String(),
		Year:        year,
		ScopeType:   req.ScopeType,
		ScopeID:     req.ScopeID,
		RequestedBy: claims.Subject,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to enqueue rebuild",
			attr.String("tenant_id", tenantID.String()),
			attr.Int("year", year),
			attr.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to enqueue rebuild")
		return
	}

	h.logger.InfoContext(ctx, "Rebuild enqueued",
		attr.String("tenant_id", tenantID.String()),
		attr.Int("year", year),
		attr.String("scope", scope),
		attr.String("requested_by", claims.Subject),
		attr.Int64("job_id", jobID),
	)
	writeJSON(w, http.StatusAccepted, rebuildResponse{JobID: jobID, Scope: scope})
}

// writeServiceError maps partition validation failures to 400 and
// everything else to 500.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, rankingdomain.ErrInvalidScopeType),
		errors.Is(err, rankingdomain.ErrMissingScopeID),
		errors.Is(err, rankingdomain.ErrInvalidYear),
		errors.Is(err, rankingdomain.ErrMissingTenant):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Ranking request failed",
			attr.String("operation", op),
			attr.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
