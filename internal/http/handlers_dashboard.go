package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EedwinGglez11/dinaree/internal/cache"
	"github.com/EedwinGglez11/dinaree/internal/project"
)

// stateVersion fetches the current version for cache keying; 0 disables
// memoization for the request when the lookup fails.
func (s *Server) stateVersion(r *http.Request) int64 {
	version, err := s.store.Version(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "Failed to read state version", "error", err)
		return 0
	}
	return version
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadState(w, r)
	if !ok {
		return
	}
	now := time.Now()

	key := cache.VersionKey(state.Version, "summary")
	totals, hit := s.totalsCache.Get(key)
	if !hit {
		totals = project.TotalsInPeriod(state, now, project.PeriodMonth)
		if state.Version > 0 {
			s.totalsCache.Set(key, totals)
		}
	}

	// Income and savings mirror the first bucket of the monthly series.
	series := project.MonthlySeries(state, now, 1)
	income := decimal.Zero
	savings := decimal.Zero
	if len(series.Income) > 0 {
		income = series.Income[0]
		savings = series.Savings[0]
	}

	goals := make([]goalProgress, 0, len(state.Goals))
	for _, g := range state.Goals {
		goals = append(goals, goalProgress{ID: g.ID, Name: g.Name, Progress: g.Progress()})
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Month:        totals.Start.Format("2006-01"),
		TotalDue:     totals.Total,
		ByType:       byTypeResponse(totals.ByType),
		Income:       income,
		Savings:      savings,
		Goals:        goals,
		StateVersion: state.Version,
	})
}

func (s *Server) handleDashboardProjection(w http.ResponseWriter, r *http.Request) {
	months := s.months
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 60 {
			errorJSON(w, http.StatusBadRequest, "months must be an integer between 1 and 60")
			return
		}
		months = n
	}

	version := s.stateVersion(r)
	key := cache.VersionKey(version, "projection", strconv.Itoa(months))
	if series, hit := s.seriesCache.Get(key); hit && version > 0 {
		writeJSON(w, http.StatusOK, newProjectionResponse(series))
		return
	}

	state, ok := s.loadState(w, r)
	if !ok {
		return
	}
	series := project.MonthlySeries(state, time.Now(), months)
	if state.Version > 0 {
		s.seriesCache.Set(cache.VersionKey(state.Version, "projection", strconv.Itoa(months)), series)
	}
	writeJSON(w, http.StatusOK, newProjectionResponse(series))
}

func (s *Server) handleDashboardCategories(w http.ResponseWriter, r *http.Request) {
	frequency := r.URL.Query().Get("frequency")
	if frequency == "" {
		frequency = project.FrequencyAll
	}

	version := s.stateVersion(r)
	key := cache.VersionKey(version, "categories", frequency)
	if b, hit := s.categoryCache.Get(key); hit && version > 0 {
		writeJSON(w, http.StatusOK, categoriesResponse{Labels: b.Labels, Values: b.Values})
		return
	}

	state, ok := s.loadState(w, r)
	if !ok {
		return
	}
	b := project.CategoryBreakdown(state, frequency)
	if state.Version > 0 {
		s.categoryCache.Set(cache.VersionKey(state.Version, "categories", frequency), b)
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Labels: b.Labels, Values: b.Values})
}

func (s *Server) handleDashboardUpcoming(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = "all"
	}
	switch filter {
	case "all", string(project.PeriodWeek), string(project.PeriodFortnight), string(project.PeriodMonth):
	default:
		errorJSON(w, http.StatusBadRequest, "filter must be one of week, fortnight, month, all")
		return
	}

	state, ok := s.loadState(w, r)
	if !ok {
		return
	}
	now := time.Now()

	if filter == "all" {
		key := cache.VersionKey(state.Version, "upcoming")
		events, hit := s.upcomingCache.Get(key)
		if !hit {
			events = project.UpcomingPayments(state, now)
			if state.Version > 0 {
				s.upcomingCache.Set(key, events)
			}
		}

		total := decimal.Zero
		out := make([]paymentEventResponse, 0, len(events))
		for _, ev := range events {
			total = total.Add(ev.Amount)
			out = append(out, newPaymentEventResponse(ev))
		}
		writeJSON(w, http.StatusOK, upcomingResponse{
			Filter: filter,
			Total:  total,
			Events: out,
		})
		return
	}

	totals := project.TotalsInPeriod(state, now, project.PeriodFilter(filter))
	out := make([]paymentEventResponse, 0, len(totals.Events))
	for _, ev := range totals.Events {
		out = append(out, newPaymentEventResponse(ev))
	}
	writeJSON(w, http.StatusOK, upcomingResponse{
		Filter: filter,
		Start:  fmtDate(totals.Start),
		End:    fmtDate(totals.End),
		Total:  totals.Total,
		ByType: byTypeResponse(totals.ByType),
		Events: out,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadState(w, r)
	if !ok {
		return
	}
	rows := project.ReportRows(state, time.Now())
	out := make([]reportRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, reportRowResponse{
			Date:     fmtDate(row.Date),
			Type:     row.Type,
			Name:     row.Name,
			Amount:   row.Amount,
			Category: row.Category,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	if s.reportSink == nil {
		errorJSON(w, http.StatusServiceUnavailable, "report export is not configured")
		return
	}

	state, ok := s.loadState(w, r)
	if !ok {
		return
	}
	rows := project.ReportRows(state, time.Now())
	if err := s.reportSink.WriteReport(r.Context(), rows); err != nil {
		slog.ErrorContext(r.Context(), "Report export failed", "error", err)
		errorJSON(w, http.StatusBadGateway, "report export failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"exported":     true,
		"rows":         len(rows),
		"stateVersion": state.Version,
	})
}
