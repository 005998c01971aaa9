package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/homevista/brokerage-backend/internal/models"
)

// ErrListingNotFound is returned when a listing does not exist or does not
// belong to the requesting agent. The two cases are deliberately not
// distinguished so handlers can return 404 without leaking ownership.
var ErrListingNotFound = errors.New("listing not found")

// ImageUpload describes one staged image file about to be attached to a
// property. Filename is the unique final basename chosen at staging time,
// so the stored path is known before the files are moved into place.
type ImageUpload struct {
	Filename     string
	Caption      string
	IsPrimary    bool
	DisplayOrder int
}

// ListingFilters are the optional filters of the listings index page
type ListingFilters struct {
	Status string
	Type   string
	Search string
	Page   int
}

// PropertyRepository handles property and listing database operations
type PropertyRepository struct {
	db DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

const propertyColumns = `p.id, p.title, p.description, p.property_type, p.status,
	       p.price, p.bedrooms, p.bathrooms, p.area, p.year_built, p.lot_size,
	       p.address, p.city, p.state, p.postal_code, p.latitude, p.longitude,
	       p.featured, p.created_at, p.updated_at`

// CreateListing inserts the property, its listing relationship, the feature
// associations, and the image rows as a single transaction. On any failure
// nothing is written. Returns the new property ID.
//
// Exactly one image row ends up with is_primary = 1 whenever images are
// present: the first image flagged primary wins, and if none is flagged the
// first image is promoted.
func (r *PropertyRepository) CreateListing(agentID int64, req *models.ListingRequest, images []ImageUpload) (int64, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	var propertyID int64
	propertyQuery := `
		INSERT INTO properties (
			title, description, property_type, status, price,
			bedrooms, bathrooms, area, year_built, lot_size,
			address, city, state, postal_code, latitude, longitude,
			featured, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19
		) RETURNING id
	`
	err = tx.QueryRow(propertyQuery,
		req.Title, nullString(req.Description), req.PropertyType, req.Status, req.Price,
		req.Bedrooms, req.Bathrooms, nullFloat(req.Area), nullInt(int64(req.YearBuilt)), nullFloat(req.LotSize),
		req.Address, req.City, req.State, nullString(req.PostalCode), nullFloat(req.Latitude), nullFloat(req.Longitude),
		req.Featured, now, now,
	).Scan(&propertyID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert property: %w", err)
	}

	listDate := now
	if req.ListDate != "" {
		if parsed, perr := time.Parse("2006-01-02", req.ListDate); perr == nil {
			listDate = parsed
		}
	}
	var expiration interface{}
	if req.ExpirationDate != "" {
		if parsed, perr := time.Parse("2006-01-02", req.ExpirationDate); perr == nil {
			expiration = parsed
		}
	}

	listingQuery := `
		INSERT INTO property_listings (
			property_id, agent_id, list_date, expiration_date,
			commission_rate, exclusive, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.Exec(listingQuery,
		propertyID, agentID, listDate, expiration,
		nullFloat(req.CommissionRate), req.Exclusive, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert listing: %w", err)
	}

	featureQuery := `INSERT INTO property_has_features (property_id, feature_id) VALUES ($1, $2)`
	for _, featureID := range req.FeatureIDs {
		if _, err := tx.Exec(featureQuery, propertyID, featureID); err != nil {
			return 0, fmt.Errorf("failed to insert feature association: %w", err)
		}
	}

	if err := insertImages(tx, propertyID, images, now); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit listing: %w", err)
	}

	return propertyID, nil
}

// insertImages writes image rows inside an open transaction, normalizing
// the primary flag so exactly one row is primary when any rows exist.
func insertImages(tx execer, propertyID int64, images []ImageUpload, now time.Time) error {
	if len(images) == 0 {
		return nil
	}

	primaryIdx := 0
	for i, img := range images {
		if img.IsPrimary {
			primaryIdx = i
			break
		}
	}

	query := `
		INSERT INTO property_images (
			property_id, url, caption, is_primary, display_order, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, img := range images {
		url := fmt.Sprintf("properties/%d/%s", propertyID, img.Filename)
		_, err := tx.Exec(query, propertyID, url, nullString(img.Caption), i == primaryIdx, img.DisplayOrder, now)
		if err != nil {
			return fmt.Errorf("failed to insert image: %w", err)
		}
	}
	return nil
}

// execer is the subset of sqlx.Tx used by shared insert helpers
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// GetListings returns one page of the agent's listings plus the total
// matching count for pagination.
func (r *PropertyRepository) GetListings(agentID int64, filters ListingFilters) ([]models.ListingSummary, int, error) {
	qb := NewQueryBuilder()
	if filters.Status != "" {
		qb.Add("p.status = ?", filters.Status)
	}
	if filters.Type != "" {
		qb.Add("p.property_type = ?", filters.Type)
	}
	qb.AddSearch(filters.Search, "p.title", "p.address", "p.city")

	where, args := qb.Where(2)
	baseArgs := append([]interface{}{agentID}, args...)

	countQuery := `
		SELECT COUNT(*)
		FROM properties p
		JOIN property_listings pl ON pl.property_id = p.id
		WHERE pl.agent_id = $1` + where

	var total int
	if err := r.db.QueryRow(countQuery, baseArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	limit, offset := Paginate(filters.Page, DefaultPageSize)
	listQuery := fmt.Sprintf(`
		SELECT `+propertyColumns+`,
		       pl.id AS listing_id, pl.agent_id, pl.list_date, pl.expiration_date,
		       pl.commission_rate, pl.exclusive,
		       (SELECT pi.url FROM property_images pi
		        WHERE pi.property_id = p.id AND pi.is_primary
		        ORDER BY pi.display_order LIMIT 1) AS primary_image,
		       (SELECT COUNT(*) FROM inquiries i WHERE i.property_id = p.id) AS inquiry_count
		FROM properties p
		JOIN property_listings pl ON pl.property_id = p.id
		WHERE pl.agent_id = $1%s
		ORDER BY pl.list_date DESC, p.id DESC
		LIMIT %d OFFSET %d`, where, limit, offset)

	listings := []models.ListingSummary{}
	if err := r.db.Select(&listings, listQuery, baseArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list listings: %w", err)
	}

	return listings, total, nil
}

// GetListingDetail returns the full edit payload for one of the agent's
// listings. Returns ErrListingNotFound for missing or foreign listings.
func (r *PropertyRepository) GetListingDetail(agentID, propertyID int64) (*models.ListingDetail, error) {
	var listing models.PropertyListing
	listingQuery := `
		SELECT id, property_id, agent_id, list_date, expiration_date,
		       commission_rate, exclusive, created_at
		FROM property_listings
		WHERE property_id = $1 AND agent_id = $2
	`
	if err := r.db.Get(&listing, listingQuery, propertyID, agentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	var property models.Property
	propertyQuery := `
		SELECT ` + propertyColumns + `
		FROM properties p
		WHERE p.id = $1
	`
	if err := r.db.Get(&property, propertyQuery, propertyID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	images := []models.PropertyImage{}
	imageQuery := `
		SELECT id, property_id, url, caption, is_primary, display_order, created_at
		FROM property_images
		WHERE property_id = $1
		ORDER BY display_order, id
	`
	if err := r.db.Select(&images, imageQuery, propertyID); err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	features := []models.PropertyFeature{}
	featureQuery := `
		SELECT f.id, f.name
		FROM property_features f
		JOIN property_has_features phf ON phf.feature_id = f.id
		WHERE phf.property_id = $1
		ORDER BY f.name
	`
	if err := r.db.Select(&features, featureQuery, propertyID); err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}

	return &models.ListingDetail{
		Property: property,
		Listing:  listing,
		Images:   images,
		Features: features,
	}, nil
}

// UpdateListing rewrites the property row, the listing terms, and the
// feature set as one transaction. Ownership is checked inside the
// transaction; ErrListingNotFound is returned for foreign listings.
func (r *PropertyRepository) UpdateListing(agentID, propertyID int64, req *models.ListingRequest) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockOwnedListing(tx, agentID, propertyID); err != nil {
		return err
	}

	now := time.Now()
	propertyQuery := `
		UPDATE properties
		SET title = $1, description = $2, property_type = $3, status = $4,
		    price = $5, bedrooms = $6, bathrooms = $7, area = $8,
		    year_built = $9, lot_size = $10, address = $11, city = $12,
		    state = $13, postal_code = $14, latitude = $15, longitude = $16,
		    featured = $17, updated_at = $18
		WHERE id = $19
	`
	_, err = tx.Exec(propertyQuery,
		req.Title, nullString(req.Description), req.PropertyType, req.Status,
		req.Price, req.Bedrooms, req.Bathrooms, nullFloat(req.Area),
		nullInt(int64(req.YearBuilt)), nullFloat(req.LotSize), req.Address, req.City,
		req.State, nullString(req.PostalCode), nullFloat(req.Latitude), nullFloat(req.Longitude),
		req.Featured, now, propertyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}

	var expiration interface{}
	if req.ExpirationDate != "" {
		if parsed, perr := time.Parse("2006-01-02", req.ExpirationDate); perr == nil {
			expiration = parsed
		}
	}
	listingQuery := `
		UPDATE property_listings
		SET expiration_date = $1, commission_rate = $2, exclusive = $3
		WHERE property_id = $4 AND agent_id = $5
	`
	if _, err := tx.Exec(listingQuery, expiration, nullFloat(req.CommissionRate), req.Exclusive, propertyID, agentID); err != nil {
		return fmt.Errorf("failed to update listing terms: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM property_has_features WHERE property_id = $1`, propertyID); err != nil {
		return fmt.Errorf("failed to clear feature associations: %w", err)
	}
	featureQuery := `INSERT INTO property_has_features (property_id, feature_id) VALUES ($1, $2)`
	for _, featureID := range req.FeatureIDs {
		if _, err := tx.Exec(featureQuery, propertyID, featureID); err != nil {
			return fmt.Errorf("failed to insert feature association: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit listing update: %w", err)
	}

	return nil
}

// UpdateStatus changes the property status (mark_sold / mark_rented and
// friends) for a listing the agent owns.
func (r *PropertyRepository) UpdateStatus(agentID, propertyID int64, status string) error {
	query := `
		UPDATE properties p
		SET status = $1, updated_at = $2
		FROM property_listings pl
		WHERE pl.property_id = p.id AND p.id = $3 AND pl.agent_id = $4
	`

	result, err := r.db.Exec(query, status, time.Now(), propertyID, agentID)
	if err != nil {
		return fmt.Errorf("failed to update property status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrListingNotFound
	}

	return nil
}

// DeleteListing hard-deletes the listing with its property, feature
// associations, and image rows, returning the stored image paths so the
// caller can remove the files from disk after the delete commits.
func (r *PropertyRepository) DeleteListing(agentID, propertyID int64) ([]string, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockOwnedListing(tx, agentID, propertyID); err != nil {
		return nil, err
	}

	var imagePaths []string
	rows, err := tx.Query(`SELECT url FROM property_images WHERE property_id = $1`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to collect image paths: %w", err)
	}
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan image path: %w", err)
		}
		imagePaths = append(imagePaths, path)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to read image paths: %w", err)
	}
	rows.Close()

	steps := []struct {
		query string
		arg   interface{}
	}{
		{`DELETE FROM property_has_features WHERE property_id = $1`, propertyID},
		{`DELETE FROM property_images WHERE property_id = $1`, propertyID},
		{`DELETE FROM property_listings WHERE property_id = $1`, propertyID},
		{`DELETE FROM properties WHERE id = $1`, propertyID},
	}
	for _, step := range steps {
		if _, err := tx.Exec(step.query, step.arg); err != nil {
			return nil, fmt.Errorf("failed to delete listing: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit listing delete: %w", err)
	}

	return imagePaths, nil
}

// GetFeatures returns the fixed feature vocabulary
func (r *PropertyRepository) GetFeatures() ([]models.PropertyFeature, error) {
	features := []models.PropertyFeature{}

	query := `SELECT id, name FROM property_features ORDER BY name`

	if err := r.db.Select(&features, query); err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}

	return features, nil
}

// CountActiveByAgent counts the agent's for-sale and for-rent listings
func (r *PropertyRepository) CountActiveByAgent(agentID int64) (int, error) {
	var count int

	query := `
		SELECT COUNT(*)
		FROM properties p
		JOIN property_listings pl ON pl.property_id = p.id
		WHERE pl.agent_id = $1 AND p.status IN ('for_sale', 'for_rent')
	`

	if err := r.db.QueryRow(query, agentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active listings: %w", err)
	}

	return count, nil
}

// nullFloat converts a zero float to a SQL NULL
func nullFloat(f float64) interface{} {
	if f == 0 {
		return nil
	}
	return f
}

// nullInt converts a zero int to a SQL NULL
func nullInt(i int64) interface{} {
	if i == 0 {
		return nil
	}
	return i
}
