package repository_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenitez-dev/cashlog/internal/consolidate/repository"
	"github.com/mbenitez-dev/cashlog/internal/extract"
)

func TestUploadCopiesEveryRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := extract.Columns(extract.DocECATM)
	lower := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		lower = append(lower, strings.ToLower(c))
	}
	lower = append(lower, "job_id")

	tbl := extract.Table{Columns: cols, Rows: [][]string{
		{
			"15/03/2024", "Asuncion", "123456", "3", "1.500.000", "0",
			"IN", "ATM", "31/03/2024", "DEPOSITO", "ASU", "3.400.000", "1.200,50",
		},
	}}

	mock.ExpectCopyFrom(pgx.Identifier{"estado_cuenta_atm"}, lower).WillReturnResult(1)

	repo := repository.NewPostgres(mock)
	n, err := repo.Upload(context.Background(), extract.DocECATM, tbl, uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRejectsUnmappedType(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := repository.NewPostgres(mock)
	_, err = repo.Upload(context.Background(), extract.DocType("DESCONOCIDO"), extract.Table{}, uuid.New())
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.500.000", "1500000"},
		{"1.200,50", "1200.5"},
		{"0", "0"},
		{"", "0"},
		{"N/A", "0"},
		{"350", "350"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, repository.ParseAmount(tc.in).String())
		})
	}
}
