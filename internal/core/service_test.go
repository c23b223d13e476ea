package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/walletrecon/internal/config"
)

const (
	testLedger    = "Qty,Inventory\n5,Cold-3\n2,Cold-3\nabc,Cold-4\n"
	testStatement = "Date,Wallet Name,Quantity\n2025-04-30,Vault-3,10\n2025-04-29,Vault-3,1\n"
)

func testService(maxFileSize int64) *Service {
	cfg := &config.Config{
		Upload: config.UploadConfig{
			MaxFileSize:   maxFileSize,
			MaxConcurrent: 2,
			MaxWaitTime:   100 * time.Millisecond,
		},
	}
	return NewServiceWithProfile(DefaultProfile(), cfg)
}

func testRequest(ledger, statement string) Request {
	return Request{
		AnalysisDate:  analysisDay,
		Ledger:        strings.NewReader(ledger),
		LedgerName:    "bitwave.csv",
		Statement:     strings.NewReader(statement),
		StatementName: "anchorage.csv",
	}
}

func TestService_Reconcile(t *testing.T) {
	svc := testService(1 << 20)

	report, err := svc.Reconcile(context.Background(), testRequest(testLedger, testStatement))
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err, "run id is a uuid")
	assert.Equal(t, 3, report.LedgerRead)
	assert.Equal(t, 2, report.StatementRead)
	assert.Len(t, report.LedgerRejected, 1)
	assert.Len(t, report.StatementRejected, 1)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "3", report.Rows[0].Difference.Amount.String())
	assert.Equal(t, 0, svc.LimiterStatus().Active, "slot released after the run")
}

func TestService_Reconcile_DistinctRunIDs(t *testing.T) {
	svc := testService(1 << 20)

	a, err := svc.Reconcile(context.Background(), testRequest(testLedger, testStatement))
	require.NoError(t, err)
	b, err := svc.Reconcile(context.Background(), testRequest(testLedger, testStatement))
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Rows, b.Rows)
}

func TestService_Reconcile_InputErrors(t *testing.T) {
	svc := testService(64)

	tests := []struct {
		name    string
		req     Request
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing ledger",
			req:     Request{AnalysisDate: analysisDay, Statement: strings.NewReader(testStatement)},
			wantErr: ErrMissingInput,
		},
		{
			name:    "zero date",
			req:     Request{Ledger: strings.NewReader(testLedger), Statement: strings.NewReader(testStatement)},
			wantErr: ErrInvalidAnalysisDate,
		},
		{
			name:    "empty statement",
			req:     testRequest("Qty,Inventory\n1,A 1\n", ""),
			wantErr: ErrEmptyFile,
			wantMsg: "statement",
		},
		{
			name:    "ledger too large",
			req:     testRequest(testLedger+strings.Repeat("1,A 1\n", 20), testStatement),
			wantMsg: "ledger: file too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := svc.Reconcile(context.Background(), tt.req)
			assert.Nil(t, report)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestService_Reconcile_SchemaError(t *testing.T) {
	svc := testService(1 << 20)

	_, err := svc.Reconcile(context.Background(), testRequest("Qty\n1\n", testStatement))

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "SCH001", MapError(err).Code)
}

func TestService_Reconcile_Cancelled(t *testing.T) {
	svc := testService(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Reconcile(ctx, testRequest(testLedger, testStatement))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Reconcile_Busy(t *testing.T) {
	svc := testService(1 << 20)
	ctx := context.Background()

	require.NoError(t, svc.limiter.Acquire(ctx))
	require.NoError(t, svc.limiter.Acquire(ctx))
	defer svc.limiter.Release()
	defer svc.limiter.Release()

	_, err := svc.Reconcile(ctx, testRequest(testLedger, testStatement))

	assert.ErrorIs(t, err, ErrTooManyRuns)
	assert.Equal(t, "REC001", MapError(err).Code)
}

func TestService_Reconcile_ContextMetadata(t *testing.T) {
	svc := testService(1 << 20)
	ctx := ContextWithUserAgent(ContextWithIPAddress(context.Background(), "10.0.0.1"), "curl/8")

	assert.Equal(t, "10.0.0.1", IPAddressFromContext(ctx))
	assert.Equal(t, "curl/8", UserAgentFromContext(ctx))

	_, err := svc.Reconcile(ctx, testRequest(testLedger, testStatement))
	assert.NoError(t, err)
}

func TestService_WaitForRuns(t *testing.T) {
	svc := testService(1 << 20)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, svc.WaitForRuns(ctx))
}
