package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aevon-lab/callstats/internal/syncdelta"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

// documentArg matches a JSON document argument by decoded value.
type documentArg struct {
	want syncdelta.GlobalCounterState
}

func (d documentArg) Match(v driver.Value) bool {
	raw, ok := v.([]byte)
	if !ok {
		return false
	}
	var got syncdelta.GlobalCounterState
	if err := json.Unmarshal(raw, &got); err != nil {
		return false
	}
	return got == d.want
}

func newTestAdapter(t *testing.T, maxAttempts int) (*CounterAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	adapter := NewCounterAdapter(db, "global", maxAttempts)
	adapter.backoff = 0
	adapter.now = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }
	return adapter, mock
}

func addCalls(n int64) syncdelta.MergeFunc {
	return func(s syncdelta.GlobalCounterState) syncdelta.GlobalCounterState {
		s.TotalGlobalCalls += n
		return s
	}
}

func TestCounterAdapter_ReadMissingDocument(t *testing.T) {
	adapter, mock := newTestAdapter(t, 3)

	mock.ExpectQuery(regexp.QuoteMeta(queryReadDocument)).
		WithArgs("global").
		WillReturnRows(sqlmock.NewRows([]string{"document", "version"}))

	state, err := adapter.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, syncdelta.GlobalCounterState{}, state)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterAdapter_ReadMalformedDocument(t *testing.T) {
	adapter, mock := newTestAdapter(t, 3)

	mock.ExpectQuery(regexp.QuoteMeta(queryReadDocument)).
		WithArgs("global").
		WillReturnRows(sqlmock.NewRows([]string{"document", "version"}).AddRow([]byte(`{"total_users":"many"`), int64(7)))

	state, err := adapter.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, syncdelta.GlobalCounterState{}, state)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterAdapter_ReadUnavailable(t *testing.T) {
	adapter, mock := newTestAdapter(t, 3)

	mock.ExpectQuery(regexp.QuoteMeta(queryReadDocument)).
		WithArgs("global").
		WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	_, err := adapter.Read(context.Background())
	require.ErrorIs(t, err, syncdelta.ErrUnavailable)
}

func TestCounterAdapter_UpdateCreatesDocument(t *testing.T) {
	adapter, mock := newTestAdapter(t, 3)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(queryReadDocument)).
		WithArgs("global").
		WillReturnRows(sqlmock.NewRows([]string{"document", "version"}))
	mock.ExpectExec(regexp.QuoteMeta(queryRecordAttempt)).
		WithArgs("att-1", "device-a", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(queryInsertDocument)).
		WithArgs("global", documentArg{want: syncdelta.GlobalCounterState{TotalGlobalCalls: 5}}, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := adapter.Update(context.Background(), syncdelta.Attempt{ID: "att-1", IdentityID: "device-a"}, addCalls(5))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterAdapter_UpdateRetriesLostVersion(t *testing.T) {
	adapter, mock := newTestAdapter(t, 3)

	before := syncdelta.GlobalCounterState{TotalUsers: 1, TotalGlobalCalls: 10}
	raced := syncdelta.GlobalCounterState{TotalUsers: 2, TotalGlobalCalls: 30}
	beforeRaw, err := before.Encode()
	require.NoError(t, err)
	racedRaw, err := raced.Encode()
	require.NoError(t, err)

	// first try loses the CAS
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(queryReadDocument)).
		WithArgs("global").
		WillReturnRows(sqlmock.NewRows([]string{"document", "version"}).AddRow(beforeRaw, int64(3)))
	mock.ExpectExec(regexp.QuoteMeta(queryRecordAttempt)).
		WithArgs("att-1", "device-a", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(queryUpdateDocument)).
		WithArgs(documentArg{want: syncdelta.GlobalCounterState{TotalUsers: 1, TotalGlobalCalls: 15}}, sqlmock.AnyArg(), "global", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	// second try merges onto the winner's document
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(queryReadDocument)).
		WithArgs("global").
		WillReturnRows(sqlmock.NewRows([]string{"document", "version"}).AddRow(racedRaw, int64(4)))
	mock.ExpectExec(regexp.QuoteMeta(queryRecordAttempt)).
		WithArgs("att-1", "device-a", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(queryUpdateDocument)).
		WithArgs(documentArg{want: syncdelta.GlobalCounterState{TotalUsers: 2, TotalGlobalCalls: 35}}, sqlmock.AnyArg(), "global", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = adapter.Update(context.Background(), syncdelta.Attempt{ID: "att-1", IdentityID: "device-a"}, addCalls(5))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterAdapter_UpdateExhaustsRetries(t *testing.T) {
	adapter, mock := newTestAdapter(t, 2)

	raw, err := syncdelta.GlobalCounterState{TotalGlobalCalls: 1}.Encode()
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(queryReadDocument)).
			WithArgs("global").
			WillReturnRows(sqlmock.NewRows([]string{"document", "version"}).AddRow(raw, int64(9)))
		mock.ExpectExec(regexp.QuoteMeta(queryRecordAttempt)).
			WithArgs("att-1", "device-a", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(queryUpdateDocument)).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "global", int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()
	}

	err = adapter.Update(context.Background(), syncdelta.Attempt{ID: "att-1", IdentityID: "device-a"}, addCalls(1))
	require.ErrorIs(t, err, syncdelta.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterAdapter_UpdateRetriesSerializationFailure(t *testing.T) {
	adapter, mock := newTestAdapter(t, 3)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(queryReadDocument)).
		WithArgs("global").
		WillReturnError(&pq.Error{Code: "40001", Message: "could not serialize access"})
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(queryReadDocument)).
		WithArgs("global").
		WillReturnRows(sqlmock.NewRows([]string{"document", "version"}))
	mock.ExpectExec(regexp.QuoteMeta(queryRecordAttempt)).
		WithArgs("att-1", "device-a", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(queryInsertDocument)).
		WithArgs("global", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := adapter.Update(context.Background(), syncdelta.Attempt{ID: "att-1", IdentityID: "device-a"}, addCalls(1))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterAdapter_UpdateDetectsAppliedAttempt(t *testing.T) {
	adapter, mock := newTestAdapter(t, 3)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(queryReadDocument)).
		WithArgs("global").
		WillReturnRows(sqlmock.NewRows([]string{"document", "version"}))
	mock.ExpectExec(regexp.QuoteMeta(queryRecordAttempt)).
		WithArgs("att-1", "device-a", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := adapter.Update(context.Background(), syncdelta.Attempt{ID: "att-1", IdentityID: "device-a"}, addCalls(1))
	require.ErrorIs(t, err, syncdelta.ErrAlreadyApplied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterAdapter_UpdateUnavailable(t *testing.T) {
	adapter, mock := newTestAdapter(t, 3)

	mock.ExpectBegin().WillReturnError(&pq.Error{Code: "08001", Message: "unable to connect"})

	err := adapter.Update(context.Background(), syncdelta.Attempt{ID: "att-1", IdentityID: "device-a"}, addCalls(1))
	require.ErrorIs(t, err, syncdelta.ErrUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterAdapter_AttemptApplied(t *testing.T) {
	adapter, mock := newTestAdapter(t, 3)

	mock.ExpectQuery(regexp.QuoteMeta(queryAttemptApplied)).
		WithArgs("att-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	applied, err := adapter.AttemptApplied(context.Background(), "att-1")
	require.NoError(t, err)
	require.True(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterAdapter_WriteIdentitySummary(t *testing.T) {
	adapter, mock := newTestAdapter(t, 3)
	updated := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(queryUpsertIdentitySummary)).
		WithArgs("device-a", int64(120), int64(4), int64(20), "2024-01-15", "2024-01-15", updated).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.WriteIdentitySummary(context.Background(), syncdelta.IdentitySummary{
		IdentityID: "device-a",
		TotalCalls: 120,
		TodayCalls: 4,
		WeekCalls:  20,
		DayLabel:   "2024-01-15",
		WeekLabel:  "2024-01-15",
		UpdatedAt:  updated,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateSchema_MissingTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryTableExists)).
		WithArgs("global_counters").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(queryTableExists)).
		WithArgs("sync_attempts").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err = ValidateSchema(context.Background(), db)
	require.ErrorContains(t, err, "sync_attempts table does not exist")
	require.NoError(t, mock.ExpectationsWereMet())
}
