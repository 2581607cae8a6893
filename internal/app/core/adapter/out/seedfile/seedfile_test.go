package seedfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
)

const sample = `{"timestamp":"2025-01-16 10:30","description":"Salary","amount":"11000","kind":"deposit"}
{"timestamp":"2025-01-17T11:45:00Z","kind":"full_withdrawal"}
{"timestamp":"2025-01-25T13:21","description":"Fund return","amount":800,"kind":"DEPOSIT"}

{"timestamp":"2025-02-18 08:30","description":"Rent","amount":"500.25","kind":"withdrawal"}
`

func TestDecode(t *testing.T) {
	seeds, err := Decode(strings.NewReader(sample))

	require.NoError(t, err)
	require.Len(t, seeds, 4)
	assert.Equal(t, time.Date(2025, 1, 16, 10, 30, 0, 0, time.Local), seeds[0].Timestamp)
	assert.Equal(t, domain.TransactionKindDeposit, seeds[0].Kind)
	assert.Equal(t, "Salary", seeds[0].Description)
	assert.Equal(t, time.Date(2025, 1, 17, 11, 45, 0, 0, time.UTC), seeds[1].Timestamp.UTC())
	assert.Equal(t, domain.TransactionKindFullWithdrawal, seeds[1].Kind)
	assert.True(t, seeds[1].Amount.IsZero())
	assert.Equal(t, "800", seeds[2].Amount.String())
	assert.Equal(t, "500.25", seeds[3].Amount.String())
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown kind", `{"timestamp":"2025-01-16 10:30","amount":"1","kind":"transfer"}`},
		{"missing kind", `{"timestamp":"2025-01-16 10:30","amount":"1"}`},
		{"missing timestamp", `{"amount":"1","kind":"deposit"}`},
		{"bad timestamp", `{"timestamp":"16/01/2025","amount":"1","kind":"deposit"}`},
		{"bad amount", `{"timestamp":"2025-01-16 10:30","amount":"ten","kind":"deposit"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrInvalidSeed)
			assert.Contains(t, err.Error(), "record 0")
		})
	}
}

func TestDecode_UnknownKindKeepsCause(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"timestamp":"2025-01-16 10:30","amount":"1","kind":"loan"}`))

	assert.ErrorIs(t, err, domain.ErrUnknownTransactionKind)
}

func TestDecode_SyntaxError(t *testing.T) {
	_, err := Decode(strings.NewReader("{\"kind\":\"deposit\",\"timestamp\":\"2025-01-16 10:30\",\"amount\":1}\n{oops"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	seeds, err := Load(path)

	require.NoError(t, err)
	assert.Len(t, seeds, 4)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.jsonl"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteThenReplayRebuildsLedger(t *testing.T) {
	seeds, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	source, _ := domain.NewLedgerFromSeed(seeds)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, source.Transactions()))
	replayedSeeds, err := Decode(&buf)
	require.NoError(t, err)
	replayed, outcomes := domain.NewLedgerFromSeed(replayedSeeds)

	for _, o := range outcomes {
		assert.True(t, o.Accepted(), o.Message)
	}
	assert.True(t, replayed.Balance().Equal(source.Balance()))
	require.Equal(t, source.Len(), replayed.Len())
	for i, tran := range replayed.Transactions() {
		want := source.Transactions()[i]
		assert.True(t, want.Timestamp.Equal(tran.Timestamp))
		assert.True(t, want.BalanceAfter.Equal(tran.BalanceAfter))
		assert.Equal(t, want.Kind, tran.Kind)
	}
}

func TestExport(t *testing.T) {
	seeds, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	ledger, _ := domain.NewLedgerFromSeed(seeds)
	path := filepath.Join(t.TempDir(), "export.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	require.NoError(t, Export(path, ledger.Transactions()))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, loaded, ledger.Len())
}

// failingSink 模擬寫入或關檔失敗
type failingSink struct {
	appendErr error
	closeErr  error
	appended  int
	closed    bool
}

func (s *failingSink) Append(any) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended++
	return nil
}

func (s *failingSink) Close() error {
	s.closed = true
	return s.closeErr
}

func TestExport_Errors(t *testing.T) {
	seeds, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	ledger, _ := domain.NewLedgerFromSeed(seeds)
	errDisk := errors.New("disk full")

	tests := []struct {
		name    string
		sink    *failingSink
		wantErr string
	}{
		{"ok", &failingSink{}, ""},
		{"close fails", &failingSink{closeErr: errDisk}, "close seed file out.jsonl: disk full"},
		{"append fails", &failingSink{appendErr: errDisk, closeErr: errors.New("ignored")}, "write seed file out.jsonl: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exportTo("out.jsonl", tt.sink, ledger.Transactions())

			assert.True(t, tt.sink.closed)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, ledger.Len(), tt.sink.appended)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errDisk)
			assert.EqualError(t, err, tt.wantErr)
		})
	}

	err = Export(filepath.Join(t.TempDir(), "missing", "out.jsonl"), ledger.Transactions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
