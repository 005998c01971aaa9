package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homevista/brokerage-backend/internal/database"
	"github.com/homevista/brokerage-backend/internal/middleware"
)

func setupTransactionTest(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "sqlmock")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	handler := NewTransactionHandler(
		database.NewTransactionRepository(db),
		database.NewAgentRepository(db),
		logger,
	)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{
			UserID: 40,
			Email:  "dana@homevista.test",
			Role:   "agent",
		})
		c.Next()
	})
	router.GET("/api/v1/transactions", handler.List)

	return router, mock
}

func transactionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "property_id", "buyer_id", "seller_id",
		"listing_agent_id", "buyer_agent_id", "transaction_type",
		"sale_price", "status", "closing_date", "created_at", "updated_at",
		"property_title", "property_address", "buyer_name", "seller_name",
	})
}

func TestListTransactions_DateFilter(t *testing.T) {
	t.Run("this_month filter narrows the queries", func(t *testing.T) {
		router, mock := setupTransactionTest(t)

		expectAgentLookup(mock)
		mock.ExpectQuery(`SELECT COUNT\(\*\)[\s\S]*date_trunc\('month', t\.created_at\)`).
			WithArgs(int64(3), int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`FROM transactions t[\s\S]*date_trunc\('month', t\.created_at\)`).
			WithArgs(int64(3), int64(3)).
			WillReturnRows(transactionRows().
				AddRow(5, 7, 40, nil, 3, nil, "sale",
					425000.0, "in_progress", nil, listingCreatedAt, listingCreatedAt,
					"Elm Street Duplex", "12 Elm St", "Sam Ortiz", nil))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?date_filter=this_month", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("this_year filter narrows the queries", func(t *testing.T) {
		router, mock := setupTransactionTest(t)

		expectAgentLookup(mock)
		mock.ExpectQuery(`SELECT COUNT\(\*\)[\s\S]*date_trunc\('year', t\.created_at\)`).
			WithArgs(int64(3), int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`FROM transactions t[\s\S]*date_trunc\('year', t\.created_at\)`).
			WithArgs(int64(3), int64(3)).
			WillReturnRows(transactionRows())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?date_filter=this_year", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown filter is rejected", func(t *testing.T) {
		router, mock := setupTransactionTest(t)

		expectAgentLookup(mock)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?date_filter=last_month", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
