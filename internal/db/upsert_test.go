package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rankingCfg = UpsertConfig{
	Table:        "ranking",
	Columns:      []string{"year", "month", "carrier_id", "app_name"},
	ConflictKeys: []string{"year", "month", "carrier_id"},
}

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.Background(), nil, rankingCfg, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_NoColumns(t *testing.T) {
	_, err := BulkUpsert(context.Background(), nil, UpsertConfig{
		Table:        "ranking",
		ConflictKeys: []string{"id"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkUpsert_NoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(context.Background(), nil, UpsertConfig{
		Table:   "ranking",
		Columns: []string{"id", "name"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestBulkUpsert_UnknownConflictKey(t *testing.T) {
	_, err := BulkUpsert(context.Background(), nil, UpsertConfig{
		Table:        "ranking",
		Columns:      []string{"id", "name"},
		ConflictKeys: []string{"missing"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `conflict key "missing"`)
}

func TestBulkUpsert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_ranking"}, rankingCfg.Columns).WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "ranking" .* ON CONFLICT \("year", "month", "carrier_id"\) DO UPDATE SET "app_name" = EXCLUDED."app_name"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()
	mock.ExpectRollback()

	rows := [][]any{{2023, 1, int64(1), "video"}, {2023, 1, int64(2), "mail"}}
	n, err := BulkUpsert(context.Background(), mock, rankingCfg, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestBulkUpsert_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_ranking"}, rankingCfg.Columns).WillReturnError(errors.New("copy failed"))
	mock.ExpectRollback()

	_, err = BulkUpsert(context.Background(), mock, rankingCfg, [][]any{{2023, 1, int64(1), "video"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY into temp table for ranking")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDedupeRows_LastWins(t *testing.T) {
	rows := [][]any{
		{2023, 1, int64(1), "first"},
		{2023, 1, int64(2), "other"},
		{2023, 1, int64(1), "second"},
	}
	out := dedupeRows(rows, []int{0, 1, 2})
	require.Len(t, out, 2)
	assert.Equal(t, "second", out[0][3])
	assert.Equal(t, "other", out[1][3])
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ranking", `"ranking"`},
		{"public.ranking", `"public"."ranking"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeTable(tt.input))
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	assert.Equal(t, `"id", "name", "value"`, quoteAndJoin([]string{"id", "name", "value"}))
}
