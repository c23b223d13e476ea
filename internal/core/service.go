package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/walletrecon/internal/config"
	"github.com/JonMunkholm/walletrecon/internal/logging"
	"github.com/google/uuid"
)

// Request is one reconciliation invocation: an analysis day and two CSV streams.
type Request struct {
	AnalysisDate  time.Time
	Ledger        io.Reader
	LedgerName    string
	Statement     io.Reader
	StatementName string
}

// Service runs reconciliations for the HTTP and CLI shells.
type Service struct {
	profile     Profile
	limiter     *Limiter
	maxFileSize int64
}

// NewService creates a Service from configuration, loading the column
// profile when one is configured.
func NewService(cfg *config.Config) (*Service, error) {
	profile, err := LoadProfile(cfg.Recon.ProfilePath)
	if err != nil {
		return nil, err
	}
	return NewServiceWithProfile(profile, cfg), nil
}

// NewServiceWithProfile creates a Service with an explicit profile.
func NewServiceWithProfile(profile Profile, cfg *config.Config) *Service {
	return &Service{
		profile:     profile,
		limiter:     NewLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		maxFileSize: cfg.Upload.MaxFileSize,
	}
}

// Profile returns the active column profile.
func (s *Service) Profile() Profile {
	return s.profile
}

// Reconcile reads both streams fully, then compares them for the analysis day.
// Schema and file errors are returned; row problems are recorded on the report.
func (s *Service) Reconcile(ctx context.Context, req Request) (*Report, error) {
	if req.Ledger == nil || req.Statement == nil {
		return nil, ErrMissingInput
	}
	if req.AnalysisDate.IsZero() {
		return nil, ErrInvalidAnalysisDate
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()
	runID := uuid.New().String()

	logger := logging.WithFields(ctx,
		"run_id", runID,
		"analysis_date", req.AnalysisDate.Format(DateLayout),
	)
	if ip := IPAddressFromContext(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}
	if ua := UserAgentFromContext(ctx); ua != "" {
		logger = logger.With("user_agent", ua)
	}
	logger.Info("reconciliation started",
		"ledger_file", req.LedgerName,
		"statement_file", req.StatementName,
	)

	ledger, err := s.readTable(SourceLedger, req.Ledger)
	if err != nil {
		logger.Warn("reconciliation rejected", "error", err)
		return nil, err
	}
	statement, err := s.readTable(SourceStatement, req.Statement)
	if err != nil {
		logger.Warn("reconciliation rejected", "error", err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reconciliation cancelled: %w", err)
	}

	report, err := Reconcile(s.profile, req.AnalysisDate, ledger, statement)
	if err != nil {
		logger.Warn("reconciliation rejected", "error", err)
		return nil, err
	}

	report.RunID = runID
	report.Duration = time.Since(start)

	logger.Info("reconciliation completed",
		"ledger_rows", report.LedgerRead,
		"statement_rows", report.StatementRead,
		"wallets", len(report.Rows),
		"matched", report.Matched(),
		"unmatched", report.Unmatched(),
		"reconciled", report.Reconciled(),
		"ledger_rejected", len(report.LedgerRejected),
		"statement_rejected", len(report.StatementRejected),
		"duration_ms", report.Duration.Milliseconds(),
	)
	logRejections(logger, SourceLedger, report.LedgerRejected)
	logRejections(logger, SourceStatement, report.StatementRejected)

	return report, nil
}

// readTable reads one source stream, enforcing the configured size limit.
func (s *Service) readTable(src Source, r io.Reader) (*Table, error) {
	if s.maxFileSize > 0 {
		r = io.LimitReader(r, s.maxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: read csv: %w", src, err)
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("%s: file too large: limit is %d bytes", src, s.maxFileSize)
	}

	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return t, nil
}

// logRejections emits one debug line per rejection reason.
func logRejections(logger *slog.Logger, src Source, rejected []RejectedRow) {
	for reason, n := range CountRejections(rejected) {
		logger.Debug("rows rejected",
			"source", src,
			"reason", reason,
			"count", n,
		)
	}
}

// LimiterStatus returns the current state of the run limiter.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForRuns blocks until all active runs complete or ctx is cancelled.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
