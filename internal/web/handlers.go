package web

import (
	"encoding/base64"
	"errors"
	"fmt"
	"maps"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/JonMunkholm/walletrecon/internal/core"
	"github.com/JonMunkholm/walletrecon/internal/logging"
	"github.com/JonMunkholm/walletrecon/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

const (
	// multipartMemory is how much of a multipart form is held in memory
	// before parts spill to temporary files.
	multipartMemory = 8 << 20

	// formOverhead allows for multipart boundaries and the date field.
	formOverhead = 1 << 20
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDashboard renders the upload form.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(s.cfg.Recon.DefaultDate, nil).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

// handleReconcilePage runs a comparison from the browser form and renders
// the results page with an inline CSV download.
func (s *Server) handleReconcilePage(w http.ResponseWriter, r *http.Request) {
	report, ok := s.runReconcile(w, r)
	if !ok {
		return
	}

	date := report.AnalysisDate.Format(core.DateLayout)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if report.Empty() {
		msg := fmt.Sprintf("No wallets to compare as of %s. Every row was skipped or filtered out.", date)
		if err := templates.EmptyResults(date, msg).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render results", "error", err)
		}
		return
	}

	out := s.service.Profile().Output
	data, err := core.EncodeCSV(report.Rows, out)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	view := buildResultsView(report, out)
	view.DownloadHref = "data:text/csv;charset=utf-8;base64," + base64.StdEncoding.EncodeToString(data)

	if err := templates.Results(view).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render results", "error", err)
	}
}

// handleReconcileJSON runs a comparison and returns the report as JSON.
func (s *Server) handleReconcileJSON(w http.ResponseWriter, r *http.Request) {
	report, ok := s.runReconcile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(report, s.service.Profile().Output))
}

// handleReconcileCSV runs a comparison and returns the comparison CSV.
// An empty result has no download: 204 No Content.
func (s *Server) handleReconcileCSV(w http.ResponseWriter, r *http.Request) {
	report, ok := s.runReconcile(w, r)
	if !ok {
		return
	}

	w.Header().Set("X-Run-ID", report.RunID)
	if report.Empty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data, err := core.EncodeCSV(report.Rows, s.service.Profile().Output)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.FileName()))
	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context()).Warn("write csv response", "error", err)
	}
}

// handleDownloadTemplate serves a header-only CSV for one source.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	source := core.Source(chi.URLParam(r, "source"))

	def, ok := s.service.Profile().SourceDefinition(source)
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %q", core.ErrUnknownSource, source), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_template.csv"`, source))
	if err := core.WriteTemplate(w, def); err != nil {
		logging.FromContext(r.Context()).Warn("write template", "error", err)
	}
}

// handleStatus returns the current state of the run limiter.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.LimiterStatus())
}

// runReconcile parses the upload form and runs the service. On failure the
// error response is already written and ok is false.
func (s *Server) runReconcile(w http.ResponseWriter, r *http.Request) (*core.Report, bool) {
	req, cleanup, err := s.parseReconcileRequest(w, r)
	defer cleanup()
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return nil, false
	}

	report, err := s.service.Reconcile(WithRequestMetadata(r.Context(), r), req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return nil, false
	}
	return report, true
}

// parseReconcileRequest reads the multipart fields date, ledger and statement.
// The returned cleanup must always be called.
func (s *Server) parseReconcileRequest(w http.ResponseWriter, r *http.Request) (core.Request, func(), error) {
	cleanup := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.Upload.MaxFileSize+formOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return core.Request{}, cleanup, core.ErrMissingInput
		}
		return core.Request{}, cleanup, fmt.Errorf("parse upload form: %w", err)
	}

	var files []multipart.File
	cleanup = func() {
		for _, f := range files {
			f.Close()
		}
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}

	day, err := core.ParseAnalysisDate(s.formDate(r))
	if err != nil {
		return core.Request{}, cleanup, err
	}

	ledger, ledgerHdr, err := r.FormFile("ledger")
	if err != nil {
		return core.Request{}, cleanup, formFileError(err)
	}
	files = append(files, ledger)

	statement, statementHdr, err := r.FormFile("statement")
	if err != nil {
		return core.Request{}, cleanup, formFileError(err)
	}
	files = append(files, statement)

	return core.Request{
		AnalysisDate:  day,
		Ledger:        ledger,
		LedgerName:    ledgerHdr.Filename,
		Statement:     statement,
		StatementName: statementHdr.Filename,
	}, cleanup, nil
}

func formFileError(err error) error {
	if errors.Is(err, http.ErrMissingFile) {
		return core.ErrMissingInput
	}
	return fmt.Errorf("read uploaded file: %w", err)
}

// formDate returns the submitted analysis date, or the configured default.
func (s *Server) formDate(r *http.Request) string {
	if r.Form != nil {
		if d := strings.TrimSpace(r.Form.Get("date")); d != "" {
			return d
		}
	}
	return s.cfg.Recon.DefaultDate
}

// buildResultsView renders report rows to display strings.
func buildResultsView(report *core.Report, out core.OutputColumns) templates.ResultsView {
	view := templates.ResultsView{
		AnalysisDate:  report.AnalysisDate.Format(core.DateLayout),
		RunID:         report.RunID,
		Header:        out.Header(),
		FileName:      report.FileName(),
		LedgerRead:    report.LedgerRead,
		StatementRead: report.StatementRead,
		Matched:       report.Matched(),
		Unmatched:     report.Unmatched(),
		Reconciled:    report.Reconciled(),
	}

	view.Rows = make([]templates.ResultRow, len(report.Rows))
	for i, row := range report.Rows {
		view.Rows[i] = templates.ResultRow{
			Wallet:     string(row.Key),
			Ledger:     row.LedgerBalance.String(),
			Statement:  row.StatementBalance.Text(out.Unmatched),
			Difference: row.Difference.Text(out.Unmatched),
			Matched:    row.StatementBalance.Matched,
			Reconciled: row.Reconciled(),
		}
	}

	view.Rejections = append(
		rejectionLines("ledger", report.LedgerRejected),
		rejectionLines("statement", report.StatementRejected)...,
	)
	return view
}

// rejectionLines lists rejection counts ordered by reason.
func rejectionLines(source string, rejected []core.RejectedRow) []templates.RejectionLine {
	counts := core.CountRejections(rejected)
	var lines []templates.RejectionLine
	for _, reason := range slices.Sorted(maps.Keys(counts)) {
		lines = append(lines, templates.RejectionLine{
			Source: source,
			Reason: string(reason),
			Count:  counts[reason],
		})
	}
	return lines
}

// ComparisonRowResponse is one comparison line in the JSON report.
// Balances are decimal strings; unmatched cells carry the sentinel text.
type ComparisonRowResponse struct {
	Wallet     string `json:"wallet_name"`
	Ledger     string `json:"ledger_balance"`
	Statement  string `json:"statement_balance"`
	Difference string `json:"difference"`
	Matched    bool   `json:"matched"`
}

// SummaryResponse holds the run counters.
type SummaryResponse struct {
	LedgerRows       int `json:"ledger_rows"`
	StatementRows    int `json:"statement_rows"`
	Wallets          int `json:"wallets"`
	Matched          int `json:"matched"`
	Unmatched        int `json:"unmatched"`
	Reconciled       int `json:"reconciled"`
	LedgerSkipped    int `json:"ledger_skipped"`
	StatementSkipped int `json:"statement_skipped"`
}

// ReportResponse wraps a report for JSON encoding.
type ReportResponse struct {
	RunID        string                    `json:"run_id"`
	AnalysisDate string                    `json:"analysis_date"`
	FileName     string                    `json:"file_name,omitempty"`
	Empty        bool                      `json:"empty"`
	Rows         []ComparisonRowResponse   `json:"rows"`
	Summary      SummaryResponse           `json:"summary"`
	Rejections   map[string]map[string]int `json:"rejections,omitempty"`
	Duration     string                    `json:"duration"`
}

// toReportResponse converts a Report to a JSON-friendly format.
func toReportResponse(report *core.Report, out core.OutputColumns) ReportResponse {
	resp := ReportResponse{
		RunID:        report.RunID,
		AnalysisDate: report.AnalysisDate.Format(core.DateLayout),
		Empty:        report.Empty(),
		Rows:         make([]ComparisonRowResponse, len(report.Rows)),
		Summary: SummaryResponse{
			LedgerRows:       report.LedgerRead,
			StatementRows:    report.StatementRead,
			Wallets:          len(report.Rows),
			Matched:          report.Matched(),
			Unmatched:        report.Unmatched(),
			Reconciled:       report.Reconciled(),
			LedgerSkipped:    len(report.LedgerRejected),
			StatementSkipped: len(report.StatementRejected),
		},
		Duration: report.Duration.Round(time.Millisecond).String(),
	}
	if !report.Empty() {
		resp.FileName = report.FileName()
	}

	for i, row := range report.Rows {
		resp.Rows[i] = ComparisonRowResponse{
			Wallet:     string(row.Key),
			Ledger:     row.LedgerBalance.String(),
			Statement:  row.StatementBalance.Text(out.Unmatched),
			Difference: row.Difference.Text(out.Unmatched),
			Matched:    row.StatementBalance.Matched,
		}
	}

	rejections := map[string]map[string]int{}
	for source, rows := range map[string][]core.RejectedRow{
		"ledger":    report.LedgerRejected,
		"statement": report.StatementRejected,
	} {
		if len(rows) == 0 {
			continue
		}
		counts := map[string]int{}
		for reason, n := range core.CountRejections(rows) {
			counts[string(reason)] = n
		}
		rejections[source] = counts
	}
	if len(rejections) > 0 {
		resp.Rejections = rejections
	}

	return resp
}
