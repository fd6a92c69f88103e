package handler

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"daily-bonus-api/internal/repository"
	"daily-bonus-api/pkg/apierror"
	"daily-bonus-api/pkg/response"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	claims    repository.ClaimLogRepository // may be nil when the audit log is disabled
	cacheType string
	logType   string
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(claims repository.ClaimLogRepository, cacheType, logType string) *AdminHandler {
	return &AdminHandler{
		claims:    claims,
		cacheType: cacheType,
		logType:   logType,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().UTC().Format(time.RFC3339)
	stats["cache_type"] = h.cacheType
	stats["claim_log_type"] = h.logType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":   float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":     float64(memStats.Sys) / 1024 / 1024,
		"num_gc":     memStats.NumGC,
		"goroutines": runtime.NumGoroutine(),
	}

	if h.claims != nil {
		claimStats, err := h.claims.GetStats(ctx)
		if err == nil {
			claimStats["status"] = "connected"
			stats["claim_log"] = claimStats
		} else {
			stats["claim_log"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["claim_log"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}

// ListClaims handles GET /api/v1/admin/claims - paginated claim audit events.
func (h *AdminHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	if h.claims == nil {
		response.Error(w, apierror.ServiceUnavailable("Claim audit log is not configured"))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	events, total, err := h.claims.ListClaims(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, apierror.InternalError("Failed to fetch claim events"))
		return
	}

	response.JSONWithMeta(w, http.StatusOK, events, page, limit, total)
}
