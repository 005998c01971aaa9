package database

import (
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homevista/brokerage-backend/internal/models"
)

func validListingRequest() *models.ListingRequest {
	return &models.ListingRequest{
		Title:        "Sunny craftsman near the park",
		Description:  "Three bedrooms, remodeled kitchen",
		PropertyType: models.PropertyTypeHouse,
		Status:       models.PropertyForSale,
		Price:        425000,
		Bedrooms:     3,
		Bathrooms:    2,
		Address:      "18 Elm Street",
		City:         "Portland",
		State:        "OR",
		FeatureIDs:   []int64{2, 5},
	}
}

func TestCreateListing(t *testing.T) {
	t.Run("Success with images", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPropertyRepository(db)

		images := []ImageUpload{
			{Filename: "a.jpg", Caption: "Front", DisplayOrder: 0},
			{Filename: "b.jpg", IsPrimary: true, DisplayOrder: 1},
			{Filename: "c.jpg", DisplayOrder: 2},
		}

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO properties`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
		mock.ExpectExec(`INSERT INTO property_listings`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO property_has_features`).
			WithArgs(int64(7), int64(2)).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO property_has_features`).
			WithArgs(int64(7), int64(5)).
			WillReturnResult(sqlmock.NewResult(1, 1))
		// The flagged image wins the primary slot; the others are not primary
		mock.ExpectExec(`INSERT INTO property_images`).
			WithArgs(int64(7), "properties/7/a.jpg", "Front", false, 0, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO property_images`).
			WithArgs(int64(7), "properties/7/b.jpg", nil, true, 1, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectExec(`INSERT INTO property_images`).
			WithArgs(int64(7), "properties/7/c.jpg", nil, false, 2, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(3, 1))
		mock.ExpectCommit()

		propertyID, err := repo.CreateListing(12, validListingRequest(), images)
		require.NoError(t, err)
		assert.Equal(t, int64(7), propertyID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No image flagged promotes the first", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPropertyRepository(db)

		req := validListingRequest()
		req.FeatureIDs = nil
		images := []ImageUpload{
			{Filename: "a.jpg", DisplayOrder: 0},
			{Filename: "b.jpg", DisplayOrder: 1},
		}

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO properties`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
		mock.ExpectExec(`INSERT INTO property_listings`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO property_images`).
			WithArgs(int64(9), "properties/9/a.jpg", nil, true, 0, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO property_images`).
			WithArgs(int64(9), "properties/9/b.jpg", nil, false, 1, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		_, err := repo.CreateListing(12, req, images)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Single image becomes primary", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPropertyRepository(db)

		req := validListingRequest()
		req.FeatureIDs = nil

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO properties`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectExec(`INSERT INTO property_listings`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO property_images`).
			WithArgs(int64(3), "properties/3/only.jpg", nil, true, 0, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		_, err := repo.CreateListing(12, req, []ImageUpload{{Filename: "only.jpg"}})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No images writes no image rows", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPropertyRepository(db)

		req := validListingRequest()
		req.FeatureIDs = nil

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO properties`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))
		mock.ExpectExec(`INSERT INTO property_listings`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		_, err := repo.CreateListing(12, req, nil)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure mid-transaction rolls everything back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPropertyRepository(db)

		req := validListingRequest()
		req.FeatureIDs = nil
		images := []ImageUpload{{Filename: "a.jpg"}}

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO properties`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
		mock.ExpectExec(`INSERT INTO property_listings`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO property_images`).
			WillReturnError(fmt.Errorf("disk full"))
		mock.ExpectRollback()

		_, err := repo.CreateListing(12, req, images)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert image")
		assert.NoError(t, mock.ExpectationsWereMet(), "transaction must roll back, not commit")
	})
}

func TestGetListings(t *testing.T) {
	listingColumns := []string{
		"id", "title", "description", "property_type", "status",
		"price", "bedrooms", "bathrooms", "area", "year_built", "lot_size",
		"address", "city", "state", "postal_code", "latitude", "longitude",
		"featured", "created_at", "updated_at",
		"listing_id", "agent_id", "list_date", "expiration_date",
		"commission_rate", "exclusive", "primary_image", "inquiry_count",
	}

	t.Run("Filters bind in order", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPropertyRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WithArgs(int64(12), "for_sale", "house", "%elm%", "%elm%", "%elm%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT p\.id`).
			WithArgs(int64(12), "for_sale", "house", "%elm%", "%elm%", "%elm%").
			WillReturnRows(sqlmock.NewRows(listingColumns))

		listings, total, err := repo.GetListings(12, ListingFilters{
			Status: "for_sale",
			Type:   "house",
			Search: "elm",
			Page:   1,
		})
		require.NoError(t, err)
		assert.Empty(t, listings)
		assert.Equal(t, 0, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Page four offsets thirty rows", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPropertyRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WithArgs(int64(12)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
		mock.ExpectQuery(`LIMIT 10 OFFSET 30`).
			WithArgs(int64(12)).
			WillReturnRows(sqlmock.NewRows(listingColumns))

		listings, total, err := repo.GetListings(12, ListingFilters{Page: 4})
		require.NoError(t, err)
		assert.Empty(t, listings, "a page past the last row is empty, not an error")
		assert.Equal(t, 25, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Page zero clamps to the first page", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPropertyRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WithArgs(int64(12)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
		mock.ExpectQuery(`LIMIT 10 OFFSET 0`).
			WithArgs(int64(12)).
			WillReturnRows(sqlmock.NewRows(listingColumns))

		_, _, err := repo.GetListings(12, ListingFilters{Page: 0})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPropertyRepository(db)

		mock.ExpectExec(`UPDATE properties p`).
			WithArgs("sold", sqlmock.AnyArg(), int64(7), int64(12)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(12, 7, "sold")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Foreign listing is not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPropertyRepository(db)

		mock.ExpectExec(`UPDATE properties p`).
			WithArgs("sold", sqlmock.AnyArg(), int64(7), int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(99, 7, "sold")
		assert.ErrorIs(t, err, ErrListingNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteListing(t *testing.T) {
	t.Run("Returns image paths after commit", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPropertyRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM property_listings`).
			WithArgs(int64(7), int64(12)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectQuery(`SELECT url FROM property_images`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"url"}).
				AddRow("properties/7/a.jpg").
				AddRow("properties/7/b.jpg"))
		mock.ExpectExec(`DELETE FROM property_has_features`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM property_images`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM property_listings`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM properties`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		paths, err := repo.DeleteListing(12, 7)
		require.NoError(t, err)
		assert.Equal(t, []string{"properties/7/a.jpg", "properties/7/b.jpg"}, paths)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Foreign listing is not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPropertyRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM property_listings`).
			WithArgs(int64(7), int64(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		paths, err := repo.DeleteListing(99, 7)
		assert.ErrorIs(t, err, ErrListingNotFound)
		assert.Nil(t, paths)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
