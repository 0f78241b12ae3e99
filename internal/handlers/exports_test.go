package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hudemas/api/internal/domain"
	"github.com/hudemas/api/internal/services"
)

type stubExportService struct {
	rowsFunc func(ctx context.Context, from, to time.Time) ([]domain.AccountingRow, error)
}

func (s *stubExportService) AccountingRowsForRange(ctx context.Context, from, to time.Time) ([]domain.AccountingRow, error) {
	if s.rowsFunc == nil {
		return nil, nil
	}
	return s.rowsFunc(ctx, from, to)
}

func exportClock() time.Time {
	return time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)
}

func TestExportHandlersDownloadCSV(t *testing.T) {
	router := chi.NewRouter()
	var capturedFrom, capturedTo time.Time
	handler := NewExportHandlers(nil, &stubExportService{
		rowsFunc: func(ctx context.Context, from, to time.Time) ([]domain.AccountingRow, error) {
			capturedFrom, capturedTo = from, to
			return []domain.AccountingRow{
				{
					Date:           time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC),
					DocumentNumber: "HUD-abcdef12",
					ClientName:     "Ana Pop",
					TaxID:          "-",
					NetAmount:      215.9663865546,
					VATAmount:      41.0336134454,
					GrossAmount:    257,
				},
			}, nil
		},
	}, exportClock)
	handler.Routes(router)

	req := httptest.NewRequest(http.MethodGet, "/exports/accounting.csv?from=2026-03-01&to=2026-03-09", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="Export_Contabilitate_2026-03-10.csv"` {
		t.Fatalf("unexpected content disposition %q", got)
	}
	if !strings.HasPrefix(rr.Body.String(), "Data,Numar Factura,Client,CUI/CNP,Valoare Neta,TVA,Total\r\n") {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `2026-03-02,HUD-abcdef12,"Ana Pop",-,215.97,41.03,257.00`) {
		t.Fatalf("row missing from body %q", rr.Body.String())
	}

	if !capturedFrom.Equal(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", capturedFrom)
	}
	// Inclusive "to" date becomes an exclusive end the following midnight.
	if !capturedTo.Equal(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected to %v", capturedTo)
	}
}

func TestExportHandlersDownloadXLSX(t *testing.T) {
	router := chi.NewRouter()
	handler := NewExportHandlers(nil, &stubExportService{}, exportClock)
	handler.Routes(router)

	req := httptest.NewRequest(http.MethodGet, "/exports/accounting.xlsx?from=2026-03-01", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="Export_Contabilitate_2026-03-10.xlsx"` {
		t.Fatalf("unexpected content disposition %q", got)
	}
	if rr.Body.Len() == 0 {
		t.Fatal("expected workbook bytes")
	}
}

func TestExportHandlersRejectsBadDates(t *testing.T) {
	router := chi.NewRouter()
	handler := NewExportHandlers(nil, &stubExportService{}, exportClock)
	handler.Routes(router)

	for _, url := range []string{
		"/exports/accounting.csv",
		"/exports/accounting.csv?from=yesterday",
		"/exports/accounting.csv?from=2026-03-01&to=March",
	} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", url, rr.Code)
		}
	}
}

func TestExportHandlersMapsInvalidRange(t *testing.T) {
	router := chi.NewRouter()
	handler := NewExportHandlers(nil, &stubExportService{
		rowsFunc: func(context.Context, time.Time, time.Time) ([]domain.AccountingRow, error) {
			return nil, services.ErrPricingInvalidInput
		},
	}, exportClock)
	handler.Routes(router)

	req := httptest.NewRequest(http.MethodGet, "/exports/accounting.csv?from=2026-03-09&to=2026-03-01", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}
