package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/logbuffer"
	"github.com/etodastandetka/bingo-recon-service/internal/usecase"
)

type Handler struct {
	requests usecase.RequestUsecase
	payments usecase.PaymentUsecase
	limits   usecase.LimitsUsecase
	users    domain.BotUserRepository
	diag     *logbuffer.Buffer
}

func NewHandler(
	requests usecase.RequestUsecase,
	payments usecase.PaymentUsecase,
	limits usecase.LimitsUsecase,
	users domain.BotUserRepository,
	diag *logbuffer.Buffer) *Handler {

	return &Handler{
		requests: requests,
		payments: payments,
		limits:   limits,
		users:    users,
		diag:     diag,
	}
}

func NewRouter(handler *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/public/check-active-deposit", handler.CheckActiveDeposit)

	r.Route("/api/requests", func(r chi.Router) {
		r.Post("/", handler.CreateRequest)
		r.Get("/", handler.ListRequests)
		r.Get("/{id}", handler.GetRequest)
		r.Post("/{id}/confirm", handler.ConfirmRequest)
		r.Post("/{id}/cancel", handler.CancelRequest)
		r.Post("/{id}/fail", handler.FailRequest)
	})

	r.Post("/api/incoming-payment", handler.IngestPayment)
	r.Route("/api/payments", func(r chi.Router) {
		r.Get("/", handler.ListPayments)
		r.Get("/{id}", handler.GetPayment)
		r.Post("/{id}/process", handler.ProcessPayment)
		r.Patch("/{id}/unlink", handler.UnlinkPayment)
		r.Delete("/{id}", handler.DeletePayment)
	})

	r.Route("/api/limits", func(r chi.Router) {
		r.Get("/", handler.ListLimits)
		r.Post("/sync", handler.SyncAll)
		r.Post("/sync/{casino}", handler.SyncOne)
		r.Get("/logs", handler.ListLimitLogs)
		r.Delete("/logs/{id}", handler.DeleteLimitLog)
	})

	r.Put("/api/users/{userId}/note", handler.UpsertUserNote)

	r.Get("/api/logs", handler.DiagnosticLogs)
	r.Delete("/api/logs", handler.ClearDiagnosticLogs)

	return r
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID парсит числовой {id} из URL.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, fallback int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return value
}
