package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hudemas/api/internal/domain"
	"github.com/hudemas/api/internal/export"
	"github.com/hudemas/api/internal/platform/auth"
	"github.com/hudemas/api/internal/platform/httpx"
	"github.com/hudemas/api/internal/services"
)

const exportDateLayout = "2006-01-02"

// AccountingExportService projects orders in a date range into export rows.
type AccountingExportService interface {
	AccountingRowsForRange(ctx context.Context, from, to time.Time) ([]domain.AccountingRow, error)
}

// ExportHandlers serves the bookkeeping export downloads for back-office staff.
type ExportHandlers struct {
	authn   *auth.Authenticator
	exports AccountingExportService
	now     func() time.Time
}

// NewExportHandlers constructs export handlers guarded by Firebase authentication.
func NewExportHandlers(authn *auth.Authenticator, exports AccountingExportService, now func() time.Time) *ExportHandlers {
	if now == nil {
		now = time.Now
	}
	return &ExportHandlers{
		authn:   authn,
		exports: exports,
		now:     now,
	}
}

// Routes registers export endpoints under the provided router.
func (h *ExportHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	group := r
	if h.authn != nil {
		group = group.With(h.authn.RequireFirebaseAuth(auth.RoleStaff, auth.RoleAdmin))
	}
	group.Get("/exports/accounting.csv", h.downloadCSV)
	group.Get("/exports/accounting.xlsx", h.downloadXLSX)
}

func (h *ExportHandlers) downloadCSV(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.rowsForRequest(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", export.CSVContentType())
	w.Header().Set("Content-Disposition", attachment(export.CSVFileName(h.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(export.WriteCSV(rows)))
}

func (h *ExportHandlers) downloadXLSX(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, ok := h.rowsForRequest(w, r)
	if !ok {
		return
	}

	data, err := export.WriteXLSX(rows)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("export_error", "failed to build spreadsheet", http.StatusInternalServerError))
		return
	}

	w.Header().Set("Content-Type", export.XLSXContentType())
	w.Header().Set("Content-Disposition", attachment(export.XLSXFileName(h.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// rowsForRequest parses the date range query and loads the export rows.
// "to" is an inclusive calendar date; the repository range end is exclusive,
// so a day is added before querying.
func (h *ExportHandlers) rowsForRequest(w http.ResponseWriter, r *http.Request) ([]domain.AccountingRow, bool) {
	ctx := r.Context()
	if h.exports == nil {
		httpx.WriteError(ctx, w, httpx.NewError("exports_unavailable", "export service unavailable", http.StatusServiceUnavailable))
		return nil, false
	}

	from, err := parseExportDate(r.URL.Query().Get("from"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "from must be a YYYY-MM-DD date", http.StatusBadRequest))
		return nil, false
	}

	to := h.now().UTC().Truncate(24 * time.Hour)
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err = parseExportDate(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "to must be a YYYY-MM-DD date", http.StatusBadRequest))
			return nil, false
		}
	}
	to = to.Add(24 * time.Hour)

	rows, err := h.exports.AccountingRowsForRange(ctx, from, to)
	if err != nil {
		if errors.Is(err, services.ErrPricingInvalidInput) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "export range end must follow start", http.StatusBadRequest))
			return nil, false
		}
		httpx.WriteError(ctx, w, httpx.NewError("export_error", "failed to build export", http.StatusInternalServerError))
		return nil, false
	}

	return rows, true
}

func parseExportDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("date is required")
	}
	return time.ParseInLocation(exportDateLayout, raw, time.UTC)
}

func attachment(fileName string) string {
	return fmt.Sprintf("attachment; filename=%q", fileName)
}
