package database

import (
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inquiryCreatedAt = time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)

func inquiryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "property_id", "user_id", "name", "email", "phone",
		"message", "status", "created_at",
		"property_title", "property_address", "property_city", "primary_image",
	})
}

func TestInquiryListByAgent(t *testing.T) {
	t.Run("unfiltered list binds only the agent id", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewInquiryRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery("FROM inquiries i").
			WithArgs(int64(3)).
			WillReturnRows(inquiryRows().
				AddRow(11, 7, nil, "Sam Ortiz", "sam@example.com", "555-0102",
					"Is the garage included?", "new", inquiryCreatedAt,
					"Elm Street Duplex", "12 Elm St", "Riverton", "properties/7/a.jpg").
				AddRow(12, 8, 40, "Priya Nair", "priya@example.com", nil,
					"Looking to view this week", "responded", inquiryCreatedAt,
					"Lakeside Condo", "4 Shore Rd", "Riverton", nil))

		inquiries, total, err := repo.ListByAgent(3, InquiryFilters{})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, inquiries, 2)
		assert.Equal(t, "Sam Ortiz", inquiries[0].Name)
		assert.Equal(t, "responded", inquiries[1].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("orders open statuses before closed ones", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewInquiryRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`CASE i.status\s+WHEN 'new' THEN 0`).
			WithArgs(int64(3)).
			WillReturnRows(inquiryRows())

		_, _, err := repo.ListByAgent(3, InquiryFilters{})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters bind in order after the agent id", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewInquiryRepository(db)

		pattern := "%garage%"
		args := []driver.Value{
			int64(3), "new", int64(7), pattern, pattern, pattern, pattern,
		}

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WithArgs(args...).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("FROM inquiries i").
			WithArgs(args...).
			WillReturnRows(inquiryRows().
				AddRow(11, 7, nil, "Sam Ortiz", "sam@example.com", nil,
					"Is the garage included?", "new", inquiryCreatedAt,
					"Elm Street Duplex", "12 Elm St", "Riverton", nil))

		inquiries, total, err := repo.ListByAgent(3, InquiryFilters{
			Status:     "new",
			PropertyID: 7,
			Search:     "garage",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, inquiries, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count error is wrapped", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewInquiryRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WithArgs(int64(3)).
			WillReturnError(errors.New("connection reset"))

		_, _, err := repo.ListByAgent(3, InquiryFilters{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to count inquiries")
	})
}

func TestInquiryUpdateStatus(t *testing.T) {
	t.Run("updates an owned inquiry", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewInquiryRepository(db)

		mock.ExpectExec("UPDATE inquiries i").
			WithArgs("responded", int64(11), int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(3, 11, "responded")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign inquiry returns not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewInquiryRepository(db)

		mock.ExpectExec("UPDATE inquiries i").
			WithArgs("closed", int64(99), int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(3, 99, "closed")
		assert.ErrorIs(t, err, ErrInquiryNotFound)
	})
}

func TestCountNewByAgent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInquiryRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountNewByAgent(3)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
