package shared

import (
	"context"
	"errors"
	"net/http"
	"time"

	"nomina/internal/domain/payroll"
	"nomina/internal/domain/period"
	"nomina/internal/requestctx"
	"nomina/internal/transport/http/api"
)

// PayrollHistory adapts the payroll store to the resolver's lookup
// interface, translating its not-found error into ErrNoHistory.
type PayrollHistory struct {
	Store *payroll.Store
}

func (a PayrollHistory) LastPeriodEnd(ctx context.Context, email string, before time.Time) (time.Time, error) {
	end, err := a.Store.LastPeriodEnd(ctx, email, before)
	if errors.Is(err, payroll.ErrNotFound) {
		return time.Time{}, period.ErrNoHistory
	}
	return end, err
}

// PeriodResolver turns the period query parameters shared by the overtime
// and stats endpoints into a concrete date range.
type PeriodResolver struct {
	History period.HistoryLookup
	Now     func() time.Time
}

func NewPeriodResolver(history period.HistoryLookup) *PeriodResolver {
	return &PeriodResolver{History: history, Now: time.Now}
}

// FromQuery reads ?period=, defaulting to current_month. period=custom
// additionally requires ?start= and ?end=. On failure the error response
// has already been written and ok is false.
func (p *PeriodResolver) FromQuery(w http.ResponseWriter, r *http.Request, email string) (period.Range, bool) {
	requestID := requestctx.GetRequestID(r.Context())
	q := r.URL.Query()

	shorthand := period.Shorthand(q.Get("period"))
	if shorthand == "" {
		shorthand = period.CurrentMonth
	}

	if shorthand == period.Custom {
		v := NewValidator()
		start, _ := v.Date("start", q.Get("start"))
		end, _ := v.Date("end", q.Get("end"))
		if v.Reject(w, requestID) {
			return period.Range{}, false
		}
		if err := period.ValidateCustom(start, end); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), requestID)
			return period.Range{}, false
		}
		return period.Range{Start: start, End: end}, true
	}

	rng, err := period.Resolve(r.Context(), shorthand, email, p.Now(), p.History)
	if errors.Is(err, period.ErrUnknownShorthand) {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "unknown period shorthand", requestID)
		return period.Range{}, false
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "period_resolve_failed", "failed to resolve period", requestID)
		return period.Range{}, false
	}
	return rng, true
}
