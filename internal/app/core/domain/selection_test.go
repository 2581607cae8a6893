package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	l, _ := NewLedgerFromSeed(generalSeeds())
	history := l.Transactions()

	tests := []struct {
		name     string
		criteria Criteria
		wantLen  int
	}{
		{"no criteria", Criteria{}, 6},
		{"range only", Criteria{Start: at(2025, 1, 25, 0, 0), End: at(2025, 2, 19, 0, 0)}, 3},
		{"deposits", Criteria{Kind: TransactionKindDeposit}, 4},
		{"withdrawals include full withdrawals", Criteria{Kind: TransactionKindWithdrawal}, 2},
		{"full withdrawals only", Criteria{Kind: TransactionKindFullWithdrawal}, 1},
		{"range and deposits", Criteria{Start: at(2025, 1, 25, 0, 0), End: at(2025, 2, 19, 0, 0), Kind: TransactionKindDeposit}, 2},
		{"range and full withdrawals", Criteria{Start: at(2025, 1, 25, 0, 0), End: at(2025, 2, 19, 0, 0), Kind: TransactionKindFullWithdrawal}, 0},
		{"start only is ignored", Criteria{Start: at(2025, 2, 1, 0, 0)}, 6},
		{"end only is ignored", Criteria{End: at(2025, 1, 1, 0, 0)}, 6},
		{"range before history", Criteria{Start: at(2024, 1, 1, 0, 0), End: at(2024, 12, 31, 0, 0)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(history, tt.criteria)

			require.NotNil(t, got)
			assert.Len(t, got, tt.wantLen)
			for _, tran := range got {
				if tt.criteria.Kind != 0 {
					assert.True(t, tran.Kind.Matches(tt.criteria.Kind))
				}
				if tt.criteria.HasRange() {
					assert.False(t, tran.Timestamp.Before(tt.criteria.Start))
					assert.False(t, tran.Timestamp.After(tt.criteria.End))
				}
			}
		})
	}
}

func TestSelect_BoundsAreInclusive(t *testing.T) {
	l, _ := NewLedgerFromSeed(generalSeeds())

	got := Select(l.Transactions(), Criteria{Start: at(2025, 1, 25, 13, 21), End: at(2025, 2, 18, 8, 30)})

	require.Len(t, got, 3)
	assert.Equal(t, "Fund return", got[0].Description)
	assert.Equal(t, at(2025, 2, 18, 8, 30), got[2].Timestamp)
}

func TestSelect_PreservesOrderAndIsIdempotent(t *testing.T) {
	l, _ := NewLedgerFromSeed(generalSeeds())
	c := Criteria{Kind: TransactionKindDeposit}

	once := Select(l.Transactions(), c)
	twice := Select(once, c)

	require.Len(t, twice, len(once))
	for i := range once {
		assert.True(t, once[i].Equal(twice[i]))
	}
	for i := 1; i < len(once); i++ {
		assert.False(t, once[i].Timestamp.Before(once[i-1].Timestamp))
	}
}

func TestSelect_EmptyInput(t *testing.T) {
	got := Select(nil, Criteria{Kind: TransactionKindDeposit})

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDayRange(t *testing.T) {
	start, end := DayRange(at(2025, 1, 25, 17, 40), at(2025, 2, 19, 8, 0))

	assert.Equal(t, at(2025, 1, 25, 0, 0), start)
	assert.Equal(t, at(2025, 2, 20, 0, 0), end)

	// 月底跨月
	_, end = DayRange(at(2025, 1, 1, 0, 0), at(2025, 1, 31, 0, 0))
	assert.Equal(t, at(2025, 2, 1, 0, 0), end)
}

func TestDayRange_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("CET", 3600)

	start, end := DayRange(time.Date(2025, 3, 1, 12, 0, 0, 0, loc), time.Date(2025, 3, 2, 12, 0, 0, 0, loc))

	assert.Equal(t, loc, start.Location())
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, loc), end)
}
