package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/etodastandetka/bingo-recon-service/internal/usecase"
)

type ingestPaymentBody struct {
	Amount           string `json:"amount"`
	Bank             string `json:"bank"`
	PaymentDate      string `json:"paymentDate"`
	NotificationText string `json:"notificationText"`
}

// IngestPayment принимает платеж от внешнего канала. Повтор в окне
// дубликата возвращает существующую запись с duplicate=true, не 409:
// для отправителя это не ошибка.
func (h *Handler) IngestPayment(w http.ResponseWriter, r *http.Request) {
	var body ingestPaymentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		writeBadRequest(w, "amount must be a positive decimal string")
		return
	}
	if body.Bank == "" {
		writeBadRequest(w, "bank is required")
		return
	}

	input := &usecase.IngestPaymentInput{
		Amount:           amount,
		Bank:             body.Bank,
		NotificationText: body.NotificationText,
	}
	if body.PaymentDate != "" {
		paymentDate, err := time.Parse(time.RFC3339, body.PaymentDate)
		if err != nil {
			writeBadRequest(w, "paymentDate must be RFC3339")
			return
		}
		input.PaymentDate = paymentDate
	}

	payment, duplicate, err := h.payments.IngestPayment(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusCreated
	if duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{
		"payment":   toPaymentDTO(payment),
		"duplicate": duplicate,
	})
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid payment id")
		return
	}

	payment, err := h.payments.GetPaymentByID(r.Context(), paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(payment))
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	var processed *bool
	if raw := r.URL.Query().Get("processed"); raw != "" {
		value := raw == "true"
		processed = &value
	}

	payments, pageInfo, err := h.payments.ListPayments(r.Context(), processed,
		queryInt(r, "page", 1), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"payments":   toPaymentDTOs(payments),
		"pagination": toPageDTO(pageInfo),
	})
}

type processPaymentBody struct {
	RequestID *int64 `json:"requestId"`
}

func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid payment id")
		return
	}

	var body processPaymentBody
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	payment, err := h.payments.ProcessPayment(r.Context(), paymentID, body.RequestID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(payment))
}

func (h *Handler) UnlinkPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid payment id")
		return
	}

	payment, err := h.payments.UnlinkPayment(r.Context(), paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(payment))
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid payment id")
		return
	}

	if err := h.payments.DeletePayment(r.Context(), paymentID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": paymentID})
}
