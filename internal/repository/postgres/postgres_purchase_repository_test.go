package repository_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/honeynil/raffle-service/internal/models"
	repository "github.com/honeynil/raffle-service/internal/repository/postgres"
	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresPurchaseRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresPurchaseRepository(db)

	rows := sqlmock.NewRows(summaryCols).
		AddRow(9, 1, "JUAN PEREZ", "45678912", "912345678", "juan@example.com", 2, "50.00", "{471001,471002}", "yape", "PENDING", "OP-0017", "ANA10", fixedTime, fixedTime, "Honda Wave 2025", "ANA TORRES", "ana@example.com").
		AddRow(8, 1, "LUZ DIAZ", "11223344", "900000000", "luz@example.com", 1, "25.00", "{431001}", "yape", "PAID", "OP-0016", nil, fixedTime, fixedTime, "Honda Wave 2025", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta(`LEFT JOIN referrals ref ON ref.code = p.referral_code ORDER BY p.created_at DESC`)).WillReturnRows(rows)

	summaries, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Honda Wave 2025", summaries[0].RaffleTitle)
	require.NotNil(t, summaries[0].ReferralEmail)
	assert.Equal(t, "ana@example.com", *summaries[0].ReferralEmail)
	assert.Nil(t, summaries[1].ReferralName)
	assert.Nil(t, summaries[1].ReferralCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPurchaseRepository_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresPurchaseRepository(db)
	ctx := context.Background()

	t.Run("ByNationalIDAndTicket", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.national_id = $1 AND $2 = ANY(p.tickets) ORDER BY p.created_at DESC`)).
			WithArgs("45678912", "471002").
			WillReturnRows(sqlmock.NewRows(summaryCols))

		summaries, err := repo.Search(ctx, models.PurchaseFilter{NationalID: "45678912", Ticket: "471002"})
		assert.NoError(t, err)
		assert.Empty(t, summaries)
		assert.NotNil(t, summaries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ByOperationNumber", func(t *testing.T) {
		rows := sqlmock.NewRows(summaryCols).
			AddRow(9, 1, "JUAN PEREZ", "45678912", "912345678", "juan@example.com", 2, "50.00", "{471001,471002}", "yape", "PAID", "OP-0017", nil, fixedTime, fixedTime, "Honda Wave 2025", nil, nil)
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.operation_number = $1 ORDER BY`)).
			WithArgs("OP-0017").
			WillReturnRows(rows)

		summaries, err := repo.Search(ctx, models.PurchaseFilter{OperationNumber: "OP-0017"})
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, "OP-0017", summaries[0].OperationNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyFilter", func(t *testing.T) {
		_, err := repo.Search(ctx, models.PurchaseFilter{})
		assert.ErrorIs(t, err, pkgerrors.ErrValidationFailed)
	})
}
