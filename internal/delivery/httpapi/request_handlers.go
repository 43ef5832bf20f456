package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/etodastandetka/bingo-recon-service/internal/usecase"
)

type createRequestBody struct {
	UserID        string `json:"userId"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Casino        string `json:"casino"`
	AccountID     string `json:"accountId"`
	PhotoFileURL  string `json:"photoFileUrl"`
	ChatMessageID *int64 `json:"chatMessageId"`
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	userID, err := parseUserID(body.UserID)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		writeBadRequest(w, "amount must be a positive decimal string")
		return
	}

	requestType := domain.RequestType(body.Type)
	if requestType != domain.TypeDeposit && requestType != domain.TypeWithdraw {
		writeBadRequest(w, "type must be deposit or withdraw")
		return
	}
	if body.Casino == "" {
		writeBadRequest(w, "casino is required")
		return
	}

	request, err := h.requests.CreateRequest(r.Context(), &usecase.CreateRequestInput{
		UserID:        userID,
		Type:          requestType,
		Amount:        amount,
		Casino:        body.Casino,
		AccountID:     body.AccountID,
		PhotoFileURL:  body.PhotoFileURL,
		ChatMessageID: body.ChatMessageID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRequestDTO(request))
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid request id")
		return
	}

	request, err := h.requests.GetRequestByID(r.Context(), requestID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(request))
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := domain.RequestFilters{
		Type:   domain.RequestType(query.Get("type")),
		Casino: query.Get("casino"),
	}
	if raw := query.Get("userId"); raw != "" {
		userID, err := parseUserID(raw)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		filters.UserID = userID
	}
	for _, status := range query["status"] {
		filters.Statuses = append(filters.Statuses, domain.RequestStatus(status))
	}
	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "from must be RFC3339")
			return
		}
		filters.DateFrom = from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "to must be RFC3339")
			return
		}
		filters.DateTo = to
	}

	requests, pageInfo, err := h.requests.ListRequests(r.Context(), filters,
		queryInt(r, "page", 1), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"requests":   toRequestDTOs(requests),
		"pagination": toPageDTO(pageInfo),
	})
}

type transitionBody struct {
	Detail string `json:"detail"`
}

func (h *Handler) ConfirmRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.requests.ConfirmRequest)
}

func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.requests.CancelRequest)
}

func (h *Handler) FailRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.requests.FailRequest)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, requestID int64, detail string) (*domain.Request, error)) {

	requestID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid request id")
		return
	}

	var body transitionBody
	if r.Body != nil {
		// Пустое тело допустимо, detail опционален
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	request, err := op(r.Context(), requestID, body.Detail)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(request))
}

type checkActiveDepositBody struct {
	UserID string `json:"userId"`
}

type checkActiveDepositDTO struct {
	HasActive      bool       `json:"hasActive"`
	RequestID      *int64     `json:"requestId,omitempty"`
	Status         string     `json:"status,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	TimeAgoMinutes *int64     `json:"timeAgoMinutes,omitempty"`
}

// CheckActiveDeposit - публичная ручка guard-а для бота.
func (h *Handler) CheckActiveDeposit(w http.ResponseWriter, r *http.Request) {
	var body checkActiveDepositBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}
	userID, err := parseUserID(body.UserID)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	check, err := h.requests.CheckActiveDeposit(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	dto := &checkActiveDepositDTO{HasActive: check.HasActive}
	if check.HasActive {
		dto.RequestID = &check.RequestID
		dto.Status = string(check.Status)
		dto.CreatedAt = &check.CreatedAt
		dto.TimeAgoMinutes = &check.TimeAgoMinutes
	}
	writeJSON(w, http.StatusOK, dto)
}
