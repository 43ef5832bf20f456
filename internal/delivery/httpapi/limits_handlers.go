package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
)

func (h *Handler) ListLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := h.limits.ListLimits(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLimitDTOs(limits))
}

// SyncAll запускает проход по всем казино. Частичный отказ - это
// нормальный исход: 200 с непустым failures.
func (h *Handler) SyncAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.limits.SyncAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) SyncOne(w http.ResponseWriter, r *http.Request) {
	casino := chi.URLParam(r, "casino")
	if casino == "" {
		writeBadRequest(w, "casino is required")
		return
	}

	outcome, err := h.limits.SyncOne(r.Context(), casino)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"casino":      outcome.Casino,
		"firstSync":   outcome.FirstSync,
		"isMismatch":  outcome.Mismatch,
		"limitBefore": outcome.LimitBefore.String(),
		"limitAfter":  outcome.LimitAfter.String(),
	})
}

func (h *Handler) ListLimitLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := domain.LimitLogFilter{
		Casino:       query.Get("casino"),
		MismatchOnly: query.Get("mismatchOnly") == "true",
	}
	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "from must be RFC3339")
			return
		}
		filter.From = &from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "to must be RFC3339")
			return
		}
		filter.To = &to
	}

	logs, pageInfo, err := h.limits.ListLogs(r.Context(), filter,
		queryInt(r, "page", 1), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"logs":       toLimitLogDTOs(logs),
		"pagination": toPageDTO(pageInfo),
	})
}

func (h *Handler) DeleteLimitLog(w http.ResponseWriter, r *http.Request) {
	logID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid log id")
		return
	}

	if err := h.limits.DeleteLog(r.Context(), logID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": logID})
}

type upsertNoteBody struct {
	Note string `json:"note"`
}

func (h *Handler) UpsertUserNote(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var body upsertNoteBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	user, err := h.users.UpsertNote(r.Context(), userID, body.Note)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":    strconv.FormatInt(user.UserID, 10),
		"note":      user.Note,
		"updatedAt": user.UpdatedAt,
	})
}

func (h *Handler) DiagnosticLogs(w http.ResponseWriter, r *http.Request) {
	limit := int(queryInt(r, "limit", 100))
	level := r.URL.Query().Get("level")
	writeJSON(w, http.StatusOK, h.diag.Entries(limit, level))
}

func (h *Handler) ClearDiagnosticLogs(w http.ResponseWriter, _ *http.Request) {
	h.diag.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
