package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiResponse - единый конверт ответа админского API.
type apiResponse struct {
	OK    bool      `json:"ok"`
	Data  any       `json:"data,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{OK: true, Data: data}); err != nil {
		slog.Error("failed to encode response", "error", err.Error())
	}
}

// writeError отдает стабильный код из доменной таксономии ошибок.
// Текст ошибки уходит клиенту как есть: API внутренний, админский.
func writeError(w http.ResponseWriter, err error) {
	code := domain.ErrorCode(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFromCode(code))
	encodeErr := json.NewEncoder(w).Encode(apiResponse{
		OK:    false,
		Error: &apiError{Code: code, Message: err.Error()},
	})
	if encodeErr != nil {
		slog.Error("failed to encode error response", "error", encodeErr.Error())
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(apiResponse{
		OK:    false,
		Error: &apiError{Code: "BAD_REQUEST", Message: message},
	})
}

func statusFromCode(code string) int {
	switch code {
	case "NOT_FOUND":
		return http.StatusNotFound
	case "CONFLICT", "DUPLICATE_ACTIVE_REQUEST":
		return http.StatusConflict
	case "INVALID_STATE":
		return http.StatusUnprocessableEntity
	case "UPSTREAM_ERROR":
		return http.StatusBadGateway
	default:
		// CONSISTENCY_ERROR и INTERNAL - всегда 500, это наши баги
		return http.StatusInternalServerError
	}
}
