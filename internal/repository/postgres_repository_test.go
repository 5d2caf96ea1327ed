package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/CortinezO98/MisVigencias/internal/internaltypes"
	"github.com/CortinezO98/MisVigencias/internal/model"
)

func TestMain(m *testing.M) {
	zlog.InitConsole()
	os.Exit(m.Run())
}

var obligationColumns = []string{
	"id", "tipo", "fecha_vencimiento", "activo", "r30", "r15", "r7", "r1", "last_notified_at",
	"alias", "plate",
	"owner_id", "username", "email", "plan", "phone", "whatsapp_enabled", "notification_days",
	"push_tokens",
}

func newMockStore(t *testing.T) (*StoreRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewStoreRepository(db, retry.Strategy{Attempts: 1, Delay: time.Millisecond}), mock
}

func TestFetchActiveScansFullRow(t *testing.T) {
	store, mock := newMockStore(t)

	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(obligationColumns).
		AddRow(
			int64(7), "SOAT", due, true, true, true, true, false, nil,
			"moto roja", "ABC123",
			int64(3), "laura", "laura@example.com", "PRO", "+573001112233", true, []byte("{30,7,1}"),
			[]byte("{token-aaaa-0123456789,token-bbbb-0123456789}"),
		)

	mock.ExpectQuery("FROM vigencias").WillReturnRows(rows)

	got, err := store.FetchActive(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)

	ob := got[0]
	assert.Equal(t, int64(7), ob.ID)
	assert.Equal(t, internaltypes.SOAT, ob.Kind.String())
	assert.Equal(t, due, ob.DueDate)
	assert.True(t, ob.R30)
	assert.False(t, ob.R1)
	assert.Nil(t, ob.LastNotifiedAt)
	assert.Equal(t, model.Vehicle{Alias: "moto roja", Plate: "ABC123"}, ob.Vehicle)
	assert.Equal(t, int64(3), ob.Owner.ID)
	assert.Equal(t, internaltypes.PlanPro, ob.Owner.Plan)
	assert.True(t, ob.Owner.WhatsAppEnabled)
	assert.Equal(t, []int{30, 7, 1}, ob.Owner.NotificationDays)
	assert.Equal(t, []string{"token-aaaa-0123456789", "token-bbbb-0123456789"}, ob.Owner.PushTokens)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchActiveSkipsRowsWithUnknownEnums(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows(obligationColumns).
		AddRow(
			int64(1), "LICENCIA", time.Now(), true, true, true, true, true, nil,
			"carro", "", int64(3), "laura", "laura@example.com", "FREE", "", false, []byte("{}"), []byte("{}"),
		).
		AddRow(
			int64(2), "TECNO", time.Now(), true, true, true, true, true, nil,
			"carro", "", int64(3), "laura", "laura@example.com", "GOLD", "", false, []byte("{}"), []byte("{}"),
		).
		AddRow(
			int64(3), "TECNO", time.Now(), true, true, true, true, true, nil,
			"carro", "", int64(3), "laura", "laura@example.com", "FREE", "", false, []byte("{}"), []byte("{}"),
		)

	mock.ExpectQuery("FROM vigencias").WillReturnRows(rows)

	got, err := store.FetchActive(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Empty(t, got[0].Owner.PushTokens)
}

func TestFetchActiveQueryErrorAfterRetries(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("FROM vigencias").WillReturnError(errors.New("connection refused"))

	_, err := store.FetchActive(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "error fetching active obligations")
}

func TestRecordInsertsLogEntry(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO notification_log").
		WithArgs(int64(7), "run-1", "EMAIL", "SENT", "Email enviado a laura@example.com (days_left=7)").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Record(context.Background(), model.LogEntry{
		ObligationID: 7,
		RunID:        "run-1",
		Channel:      internaltypes.ChannelEmail,
		Status:       internaltypes.StatusSent,
		Message:      "Email enviado a laura@example.com (days_left=7)",
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordWrapsInsertError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO notification_log").
		WillReturnError(errors.New("disk full"))

	err := store.Record(context.Background(), model.LogEntry{
		ObligationID: 7,
		RunID:        "run-1",
		Channel:      internaltypes.ChannelEmail,
		Status:       internaltypes.StatusFailed,
		Message:      "x",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "error inserting notification log entry")
}

func TestDeactivateToken(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE fcm_tokens SET is_active").
		WithArgs("stale-token-0123456789").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.DeactivateToken(context.Background(), "stale-token-0123456789")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
