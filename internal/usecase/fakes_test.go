package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
)

// Фейки уровня usecase: семантика репозиториев повторяется в памяти,
// транзакционное поведение проверяют тесты самих репозиториев.

type fakeRequestRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.Request
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{byID: make(map[int64]*domain.Request)}
}

func (r *fakeRequestRepo) insert(request *domain.Request) {
	r.nextID++
	request.ID = r.nextID
	if request.Status == "" {
		request.Status = domain.StatusPending
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	request.UpdatedAt = request.CreatedAt
	copied := *request
	r.byID[request.ID] = &copied
}

func (r *fakeRequestRepo) CreateDepositRequest(_ context.Context, request *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.UserID == request.UserID && existing.Type == domain.TypeDeposit && existing.Status.Active() {
			return domain.ErrDuplicateActiveRequest
		}
	}
	request.Type = domain.TypeDeposit
	r.insert(request)
	return nil
}

func (r *fakeRequestRepo) CreateWithdrawRequest(_ context.Context, request *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request.Type = domain.TypeWithdraw
	r.insert(request)
	return nil
}

func (r *fakeRequestRepo) GetRequestByID(_ context.Context, requestID int64) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.byID[requestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *request
	return &copied, nil
}

func (r *fakeRequestRepo) UpdateRequestStatus(_ context.Context, requestID int64, newStatus domain.RequestStatus, detail string) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.byID[requestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !request.Status.CanTransitionTo(newStatus) {
		return nil, &domain.ConflictError{RequestID: requestID, Current: request.Status, Attempted: newStatus}
	}
	request.Status = newStatus
	request.StatusDetail = detail
	request.UpdatedAt = time.Now()
	if newStatus.Terminal() {
		now := time.Now()
		request.ProcessedAt = &now
	}
	copied := *request
	return &copied, nil
}

func (r *fakeRequestRepo) FindActiveDeposit(_ context.Context, userID int64) (*domain.ActiveDeposit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*domain.Request
	for _, request := range r.byID {
		if request.UserID == userID && request.Type == domain.TypeDeposit && request.Status.Active() {
			found = append(found, request)
		}
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &domain.ActiveDeposit{
			RequestID: found[0].ID,
			Status:    found[0].Status,
			CreatedAt: found[0].CreatedAt,
		}, nil
	default:
		return nil, &domain.ConsistencyError{
			Detail: fmt.Sprintf("user %d has %d active deposit requests", userID, len(found)),
		}
	}
}

func (r *fakeRequestRepo) ExpireStaleDeposits(_ context.Context, cutoff time.Time, detail string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired int64
	for _, request := range r.byID {
		if request.Type == domain.TypeDeposit && request.Status == domain.StatusPending &&
			request.PhotoFileURL == "" && request.CreatedAt.Before(cutoff) {
			request.Status = domain.StatusFailed
			request.StatusDetail = detail
			expired++
		}
	}
	return expired, nil
}

func (r *fakeRequestRepo) FindFreshPendingDeposits(_ context.Context, since time.Time) ([]*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var fresh []*domain.Request
	for _, request := range r.byID {
		if request.Type == domain.TypeDeposit && request.Status == domain.StatusPending && request.CreatedAt.After(since) {
			copied := *request
			fresh = append(fresh, &copied)
		}
	}
	return fresh, nil
}

func (r *fakeRequestRepo) ListRequests(_ context.Context, filters domain.RequestFilters, page, limit int64) ([]*domain.Request, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Request
	for _, request := range r.byID {
		if filters.UserID != 0 && request.UserID != filters.UserID {
			continue
		}
		copied := *request
		matched = append(matched, &copied)
	}
	return matched, int64(len(matched)), nil
}

type fakePaymentRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.IncomingPayment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{byID: make(map[int64]*domain.IncomingPayment)}
}

func (r *fakePaymentRepo) SavePayment(_ context.Context, payment *domain.IncomingPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	payment.ID = r.nextID
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	copied := *payment
	r.byID[payment.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) GetPaymentByID(_ context.Context, paymentID int64) (*domain.IncomingPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.byID[paymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *payment
	return &copied, nil
}

func (r *fakePaymentRepo) FindDuplicate(_ context.Context, amount decimal.Decimal, bank string, paymentDate time.Time, window time.Duration) (*domain.IncomingPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, payment := range r.byID {
		if payment.Bank != bank || !payment.Amount.Equal(amount) {
			continue
		}
		diff := payment.PaymentDate.Sub(paymentDate)
		if diff < 0 {
			diff = -diff
		}
		if diff <= window {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) ProcessPayment(_ context.Context, paymentID int64, requestID *int64) (*domain.IncomingPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.byID[paymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if payment.IsProcessed {
		same := payment.RequestID == nil && requestID == nil ||
			payment.RequestID != nil && requestID != nil && *payment.RequestID == *requestID
		if !same {
			return nil, domain.ErrInvalidState
		}
		copied := *payment
		return &copied, nil
	}
	payment.IsProcessed = true
	payment.RequestID = requestID
	copied := *payment
	return &copied, nil
}

func (r *fakePaymentRepo) UnlinkPayment(_ context.Context, paymentID int64) (*domain.IncomingPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.byID[paymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	payment.IsProcessed = false
	payment.RequestID = nil
	copied := *payment
	return &copied, nil
}

func (r *fakePaymentRepo) DeletePayment(_ context.Context, paymentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.byID[paymentID]
	if !ok {
		return domain.ErrNotFound
	}
	if payment.IsProcessed {
		return domain.ErrInvalidState
	}
	delete(r.byID, paymentID)
	return nil
}

func (r *fakePaymentRepo) FindUnprocessedByAmount(_ context.Context, amount decimal.Decimal, from, to time.Time) ([]*domain.IncomingPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.IncomingPayment
	for _, payment := range r.byID {
		if payment.IsProcessed || payment.RequestID != nil || !payment.Amount.Equal(amount) {
			continue
		}
		if payment.PaymentDate.Before(from) || payment.PaymentDate.After(to) {
			continue
		}
		copied := *payment
		matched = append(matched, &copied)
	}
	return matched, nil
}

func (r *fakePaymentRepo) ListPayments(_ context.Context, processed *bool, page, limit int64) ([]*domain.IncomingPayment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.IncomingPayment
	for _, payment := range r.byID {
		if processed != nil && payment.IsProcessed != *processed {
			continue
		}
		copied := *payment
		matched = append(matched, &copied)
	}
	return matched, int64(len(matched)), nil
}

type fakeLimitRepo struct {
	mu     sync.Mutex
	limits map[string]*domain.CasinoLimit
	logs   []*domain.CasinoLimitLog
	nextID int64
}

func newFakeLimitRepo() *fakeLimitRepo {
	return &fakeLimitRepo{limits: make(map[string]*domain.CasinoLimit)}
}

func (r *fakeLimitRepo) SyncLimit(_ context.Context, casino string, observed decimal.Decimal, syncID string) (*domain.SyncOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	outcome := &domain.SyncOutcome{Casino: casino, LimitAfter: observed}
	limit, ok := r.limits[casino]
	if !ok {
		r.limits[casino] = &domain.CasinoLimit{
			Casino:       casino,
			CurrentLimit: observed,
			BaseLimit:    observed,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		outcome.FirstSync = true
		outcome.LimitBefore = observed
	} else {
		outcome.LimitBefore = limit.CurrentLimit
		outcome.Mismatch = !limit.CurrentLimit.Equal(observed)
		limit.CurrentLimit = observed
		limit.UpdatedAt = time.Now()
	}

	r.nextID++
	r.logs = append(r.logs, &domain.CasinoLimitLog{
		ID:          r.nextID,
		Casino:      casino,
		SyncID:      syncID,
		Amount:      observed,
		LimitBefore: outcome.LimitBefore,
		LimitAfter:  observed,
		IsMismatch:  outcome.Mismatch,
		CreatedAt:   time.Now(),
	})
	return outcome, nil
}

func (r *fakeLimitRepo) GetLimit(_ context.Context, casino string) (*domain.CasinoLimit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	limit, ok := r.limits[casino]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *limit
	return &copied, nil
}

func (r *fakeLimitRepo) ListLimits(_ context.Context) ([]*domain.CasinoLimit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	limits := make([]*domain.CasinoLimit, 0, len(r.limits))
	for _, limit := range r.limits {
		copied := *limit
		limits = append(limits, &copied)
	}
	return limits, nil
}

func (r *fakeLimitRepo) ListLogs(_ context.Context, filter domain.LimitLogFilter, page, limit int64) ([]*domain.CasinoLimitLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.CasinoLimitLog
	for _, entry := range r.logs {
		if filter.Casino != "" && entry.Casino != filter.Casino {
			continue
		}
		if filter.MismatchOnly && !entry.IsMismatch {
			continue
		}
		copied := *entry
		matched = append(matched, &copied)
	}
	return matched, int64(len(matched)), nil
}

func (r *fakeLimitRepo) DeleteLog(_ context.Context, logID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, entry := range r.logs {
		if entry.ID == logID {
			r.logs = append(r.logs[:i], r.logs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakePlatform отдает лимиты из map; ключи из fail падают с UpstreamError.
type fakePlatform struct {
	limits map[string]decimal.Decimal
	fail   map[string]error
}

func (p *fakePlatform) GetLimit(_ context.Context, casino string) (decimal.Decimal, error) {
	if err, ok := p.fail[casino]; ok {
		return decimal.Decimal{}, &domain.UpstreamError{Casino: casino, Err: err}
	}
	limit, ok := p.limits[casino]
	if !ok {
		return decimal.Decimal{}, &domain.UpstreamError{Casino: casino, Err: domain.ErrNotFound}
	}
	return limit, nil
}

func (p *fakePlatform) Casinos() []string {
	casinos := make([]string, 0, len(p.limits)+len(p.fail))
	for casino := range p.limits {
		casinos = append(casinos, casino)
	}
	for casino := range p.fail {
		casinos = append(casinos, casino)
	}
	return casinos
}

type notifyCall struct {
	UserID    int64
	Amount    string
	Casino    string
	AccountID string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (n *fakeNotifier) NotifyDeposit(userID int64, amount, casino, accountID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{UserID: userID, Amount: amount, Casino: casino, AccountID: accountID})
}

func (n *fakeNotifier) Calls() []notifyCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifyCall(nil), n.calls...)
}
