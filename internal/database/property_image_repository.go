package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrImageNotFound is returned when an image does not exist under the
// given property.
var ErrImageNotFound = errors.New("image not found")

// PropertyImageRepository maintains property image rows and the
// one-primary-image-per-property invariant.
type PropertyImageRepository struct {
	db DB
}

// NewPropertyImageRepository creates a new property image repository
func NewPropertyImageRepository(db DB) *PropertyImageRepository {
	return &PropertyImageRepository{db: db}
}

// AddImages appends image rows to a property the agent owns as one
// transaction (all-or-nothing per submission). If an upload is flagged
// primary it takes over the primary flag from any existing row; otherwise
// the first upload is promoted only when the property has no primary yet.
func (r *PropertyImageRepository) AddImages(agentID, propertyID int64, uploads []ImageUpload) error {
	if len(uploads) == 0 {
		return nil
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockOwnedListing(tx, agentID, propertyID); err != nil {
		return err
	}

	var maxOrder sql.NullInt64
	err = tx.QueryRow(`SELECT MAX(display_order) FROM property_images WHERE property_id = $1`, propertyID).Scan(&maxOrder)
	if err != nil {
		return fmt.Errorf("failed to get display order: %w", err)
	}

	var hasPrimary bool
	err = tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM property_images WHERE property_id = $1 AND is_primary)`, propertyID).Scan(&hasPrimary)
	if err != nil {
		return fmt.Errorf("failed to check primary image: %w", err)
	}

	primaryIdx := -1
	for i, up := range uploads {
		if up.IsPrimary {
			primaryIdx = i
			break
		}
	}
	if primaryIdx == -1 && !hasPrimary {
		primaryIdx = 0
	}

	if primaryIdx >= 0 && hasPrimary {
		if _, err := tx.Exec(`UPDATE property_images SET is_primary = FALSE WHERE property_id = $1`, propertyID); err != nil {
			return fmt.Errorf("failed to reset primary image: %w", err)
		}
	}

	now := time.Now()
	query := `
		INSERT INTO property_images (
			property_id, url, caption, is_primary, display_order, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	order := int(maxOrder.Int64)
	for i, up := range uploads {
		order++
		url := fmt.Sprintf("properties/%d/%s", propertyID, up.Filename)
		_, err := tx.Exec(query, propertyID, url, nullString(up.Caption), i == primaryIdx, order, now)
		if err != nil {
			return fmt.Errorf("failed to insert image: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit image insert: %w", err)
	}

	return nil
}

// SetPrimary makes the chosen image the property's only primary image.
// The reset and the set run in the same transaction.
func (r *PropertyImageRepository) SetPrimary(agentID, propertyID, imageID int64) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockOwnedListing(tx, agentID, propertyID); err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE property_images SET is_primary = FALSE WHERE property_id = $1`, propertyID); err != nil {
		return fmt.Errorf("failed to reset primary image: %w", err)
	}

	result, err := tx.Exec(
		`UPDATE property_images SET is_primary = TRUE WHERE id = $1 AND property_id = $2`,
		imageID, propertyID,
	)
	if err != nil {
		return fmt.Errorf("failed to set primary image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrImageNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit primary change: %w", err)
	}

	return nil
}

// DeleteImage removes an image row. Deleting the current primary promotes
// the remaining image with the lowest display order, so a property with
// images never ends up without a primary. Returns the stored path so the
// caller can remove the file after the delete commits.
func (r *PropertyImageRepository) DeleteImage(agentID, propertyID, imageID int64) (string, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockOwnedListing(tx, agentID, propertyID); err != nil {
		return "", err
	}

	var url string
	var wasPrimary bool
	err = tx.QueryRow(
		`SELECT url, is_primary FROM property_images WHERE id = $1 AND property_id = $2`,
		imageID, propertyID,
	).Scan(&url, &wasPrimary)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrImageNotFound
		}
		return "", fmt.Errorf("failed to get image: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM property_images WHERE id = $1`, imageID); err != nil {
		return "", fmt.Errorf("failed to delete image: %w", err)
	}

	if wasPrimary {
		promoteQuery := `
			UPDATE property_images
			SET is_primary = TRUE
			WHERE id = (
				SELECT id FROM property_images
				WHERE property_id = $1
				ORDER BY display_order, id
				LIMIT 1
			)
		`
		if _, err := tx.Exec(promoteQuery, propertyID); err != nil {
			return "", fmt.Errorf("failed to promote replacement primary: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit image delete: %w", err)
	}

	return url, nil
}

// lockOwnedListing verifies inside an open transaction that the property is
// listed by the agent, locking the listing row for the duration.
func lockOwnedListing(tx *sqlx.Tx, agentID, propertyID int64) error {
	var listingID int64
	err := tx.QueryRow(
		`SELECT id FROM property_listings WHERE property_id = $1 AND agent_id = $2 FOR UPDATE`,
		propertyID, agentID,
	).Scan(&listingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrListingNotFound
		}
		return fmt.Errorf("failed to check listing ownership: %w", err)
	}
	return nil
}
