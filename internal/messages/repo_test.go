package messages

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disasterresponse/pkg/database"
	"disasterresponse/pkg/models"
)

func TestListPostgresSQL(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`).
		WithArgs("DisasterResponse").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT * FROM "DisasterResponse" WHERE 1 = 0`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "message", "original", "genre", "related"}))
	mock.ExpectQuery(`SELECT * FROM "DisasterResponse" WHERE LOWER("message") LIKE $1 ESCAPE '\' AND "related" = 1 ORDER BY "id" LIMIT $2 OFFSET $3`).
		WithArgs("%water%", int64(20), int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "message", "original", "genre", "related"}).
			AddRow(int64(7), "need water", nil, "direct", int64(1)))

	repo := NewRepo(database.NewStore(db, database.Postgres), "")
	got, err := repo.List(context.Background(), ListQuery{Q: " Water ", Category: "related"})
	require.NoError(t, err)
	assert.Equal(t, []models.DisasterMessage{{
		ID:         7,
		Message:    "need water",
		Genre:      "direct",
		Categories: map[string]int{"related": 1},
	}}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% \_done\\`, escapeLike(`100% _done\`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestListQueryNormalize(t *testing.T) {
	tests := []struct {
		in, want ListQuery
	}{
		{ListQuery{}, ListQuery{Limit: DefaultLimit}},
		{ListQuery{Limit: -3, Offset: -1}, ListQuery{Limit: DefaultLimit}},
		{ListQuery{Limit: 101, Offset: 5}, ListQuery{Limit: MaxLimit, Offset: 5}},
		{ListQuery{Limit: 7}, ListQuery{Limit: 7}},
	}
	for _, tt := range tests {
		q := tt.in
		q.Normalize()
		assert.Equal(t, tt.want, q)
	}
}
