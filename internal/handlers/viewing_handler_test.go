package handlers

import (
	"encoding/json"
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

func setupViewingTest(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "sqlmock")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	handler := NewViewingHandler(
		database.NewViewingRepository(db),
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
	router.GET("/api/v1/viewings", handler.List)

	return router, mock
}

func viewingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "property_id", "agent_id", "user_id", "viewing_date",
		"status", "notes", "created_at", "updated_at",
		"property_title", "property_address",
		"visitor_name", "visitor_email", "visitor_phone",
	})
}

func TestListViewings_DateFilter(t *testing.T) {
	t.Run("past filter narrows the queries", func(t *testing.T) {
		router, mock := setupViewingTest(t)

		expectAgentLookup(mock)
		mock.ExpectQuery(`SELECT COUNT\(\*\)[\s\S]*v\.viewing_date < NOW\(\)`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`FROM property_viewings v[\s\S]*v\.viewing_date < NOW\(\)`).
			WithArgs(int64(3)).
			WillReturnRows(viewingRows().
				AddRow(9, 7, 3, 40, listingCreatedAt, "completed", nil,
					listingCreatedAt, listingCreatedAt,
					"Elm Street Duplex", "12 Elm St",
					"Sam Ortiz", "sam@example.com", nil))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/viewings?date_filter=past", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Data []json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upcoming filter narrows the queries", func(t *testing.T) {
		router, mock := setupViewingTest(t)

		expectAgentLookup(mock)
		mock.ExpectQuery(`SELECT COUNT\(\*\)[\s\S]*v\.viewing_date > NOW\(\)`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`FROM property_viewings v[\s\S]*v\.viewing_date > NOW\(\)`).
			WithArgs(int64(3)).
			WillReturnRows(viewingRows())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/viewings?date_filter=upcoming", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown filter is rejected", func(t *testing.T) {
		router, mock := setupViewingTest(t)

		expectAgentLookup(mock)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/viewings?date_filter=yesterday", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
