package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
)

func TestParseStatementQuery(t *testing.T) {
	tests := []struct {
		name      string
		from, to  string
		kind      string
		wantRange bool
		wantKind  domain.TransactionKind
		wantErr   bool
	}{
		{name: "empty"},
		{name: "range", from: "2025-01-25", to: "2025-02-18", wantRange: true},
		{name: "same day", from: "2025-01-25", to: "2025-01-25", wantRange: true},
		{name: "kind only", kind: "withdrawal", wantKind: domain.TransactionKindWithdrawal},
		{name: "range and kind", from: "2025-01-25", to: "2025-02-18", kind: "DEPOSIT", wantRange: true, wantKind: domain.TransactionKindDeposit},
		{name: "from without to", from: "2025-01-25", wantErr: true},
		{name: "to without from", to: "2025-01-25", wantErr: true},
		{name: "bad date", from: "25/01/2025", to: "2025-02-18", wantErr: true},
		{name: "reversed", from: "2025-02-18", to: "2025-01-25", wantErr: true},
		{name: "bad kind", kind: "transfer", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseStatementQuery(tt.from, tt.to, tt.kind)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuery)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRange, q.HasRange())
			assert.Equal(t, tt.wantKind, q.Kind)
		})
	}
}

func TestParseStatementQuery_UsesLocalDates(t *testing.T) {
	q, err := ParseStatementQuery("2025-01-25", "2025-02-18", "")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 25, 0, 0, 0, 0, time.Local), q.StartDate)
	assert.Equal(t, time.Date(2025, 2, 18, 0, 0, 0, 0, time.Local), q.EndDate)
}
