package models

import (
	"errors"
	"fmt"
	"time"
)

// Property statuses
const (
	PropertyForSale = "for_sale"
	PropertyForRent = "for_rent"
	PropertyPending = "pending"
	PropertySold    = "sold"
	PropertyRented  = "rented"
)

// Property types
const (
	PropertyTypeHouse     = "house"
	PropertyTypeApartment = "apartment"
	PropertyTypeCondo     = "condo"
	PropertyTypeTownhouse = "townhouse"
	PropertyTypeLand      = "land"
	PropertyTypeCommercial = "commercial"
)

// ValidPropertyStatus reports whether s is a known property status
func ValidPropertyStatus(s string) bool {
	switch s {
	case PropertyForSale, PropertyForRent, PropertyPending, PropertySold, PropertyRented:
		return true
	}
	return false
}

// ValidPropertyType reports whether t is a known property type
func ValidPropertyType(t string) bool {
	switch t {
	case PropertyTypeHouse, PropertyTypeApartment, PropertyTypeCondo,
		PropertyTypeTownhouse, PropertyTypeLand, PropertyTypeCommercial:
		return true
	}
	return false
}

// Property represents a physical listing target
type Property struct {
	ID           int64       `json:"id" db:"id"`
	Title        string      `json:"title" db:"title"`
	Description  NullString  `json:"description,omitempty" db:"description"`
	PropertyType string      `json:"property_type" db:"property_type"`
	Status       string      `json:"status" db:"status"`
	Price        float64     `json:"price" db:"price"`
	Bedrooms     int         `json:"bedrooms" db:"bedrooms"`
	Bathrooms    float64     `json:"bathrooms" db:"bathrooms"`
	Area         NullFloat64 `json:"area,omitempty" db:"area"`
	YearBuilt    NullInt64   `json:"year_built,omitempty" db:"year_built"`
	LotSize      NullFloat64 `json:"lot_size,omitempty" db:"lot_size"`
	Address      string      `json:"address" db:"address"`
	City         string      `json:"city" db:"city"`
	State        string      `json:"state" db:"state"`
	PostalCode   NullString  `json:"postal_code,omitempty" db:"postal_code"`
	Latitude     NullFloat64 `json:"latitude,omitempty" db:"latitude"`
	Longitude    NullFloat64 `json:"longitude,omitempty" db:"longitude"`
	Featured     bool        `json:"featured" db:"featured"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// PropertyListing is the agency relationship wrapping a property.
// Business rule: one active listing per property at a time.
type PropertyListing struct {
	ID             int64       `json:"id" db:"id"`
	PropertyID     int64       `json:"property_id" db:"property_id"`
	AgentID        int64       `json:"agent_id" db:"agent_id"`
	ListDate       time.Time   `json:"list_date" db:"list_date"`
	ExpirationDate NullTime    `json:"expiration_date,omitempty" db:"expiration_date"`
	CommissionRate NullFloat64 `json:"commission_rate,omitempty" db:"commission_rate"`
	Exclusive      bool        `json:"exclusive" db:"exclusive"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// PropertyImage is a stored file reference owned by one property. At most
// one image per property has IsPrimary set; the repository maintains that
// invariant with a reset-then-set transaction.
type PropertyImage struct {
	ID           int64      `json:"id" db:"id"`
	PropertyID   int64      `json:"property_id" db:"property_id"`
	URL          string     `json:"url" db:"url"`
	Caption      NullString `json:"caption,omitempty" db:"caption"`
	IsPrimary    bool       `json:"is_primary" db:"is_primary"`
	DisplayOrder int        `json:"display_order" db:"display_order"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// PropertyFeature is one entry of the fixed feature vocabulary
type PropertyFeature struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// ListingSummary is a joined row for the listings index page
type ListingSummary struct {
	Property
	ListingID      int64       `json:"listing_id" db:"listing_id"`
	AgentID        int64       `json:"agent_id" db:"agent_id"`
	ListDate       time.Time   `json:"list_date" db:"list_date"`
	ExpirationDate NullTime    `json:"expiration_date,omitempty" db:"expiration_date"`
	CommissionRate NullFloat64 `json:"commission_rate,omitempty" db:"commission_rate"`
	Exclusive      bool        `json:"exclusive" db:"exclusive"`
	PrimaryImage   NullString  `json:"primary_image,omitempty" db:"primary_image"`
	InquiryCount   int         `json:"inquiry_count" db:"inquiry_count"`
}

// ListingDetail is the full edit-page payload
type ListingDetail struct {
	Property Property          `json:"property"`
	Listing  PropertyListing   `json:"listing"`
	Images   []PropertyImage   `json:"images"`
	Features []PropertyFeature `json:"features"`
}

// ListingRequest carries the add/edit listing form fields. Images arrive in
// the same multipart request and are handled separately.
type ListingRequest struct {
	Title          string  `form:"title" json:"title"`
	Description    string  `form:"description" json:"description"`
	PropertyType   string  `form:"property_type" json:"property_type"`
	Status         string  `form:"status" json:"status"`
	Price          float64 `form:"price" json:"price"`
	Bedrooms       int     `form:"bedrooms" json:"bedrooms"`
	Bathrooms      float64 `form:"bathrooms" json:"bathrooms"`
	Area           float64 `form:"area" json:"area"`
	YearBuilt      int     `form:"year_built" json:"year_built"`
	LotSize        float64 `form:"lot_size" json:"lot_size"`
	Address        string  `form:"address" json:"address"`
	City           string  `form:"city" json:"city"`
	State          string  `form:"state" json:"state"`
	PostalCode     string  `form:"postal_code" json:"postal_code"`
	Latitude       float64 `form:"latitude" json:"latitude"`
	Longitude      float64 `form:"longitude" json:"longitude"`
	Featured       bool    `form:"featured" json:"featured"`
	ListDate       string  `form:"list_date" json:"list_date"`             // YYYY-MM-DD, defaults to today
	ExpirationDate string  `form:"expiration_date" json:"expiration_date"` // YYYY-MM-DD, optional
	CommissionRate float64 `form:"commission_rate" json:"commission_rate"`
	Exclusive      bool    `form:"exclusive" json:"exclusive"`
	FeatureIDs     []int64 `form:"feature_ids" json:"feature_ids"`
	PrimaryIndex   int     `form:"primary_index" json:"primary_index"` // which uploaded image is primary
}

// Validate checks required listing fields and enum values
func (r *ListingRequest) Validate() error {
	if r.Title == "" {
		return errors.New("title is required")
	}
	if !ValidPropertyType(r.PropertyType) {
		return fmt.Errorf("invalid property_type: %s", r.PropertyType)
	}
	if !ValidPropertyStatus(r.Status) {
		return fmt.Errorf("invalid status: %s", r.Status)
	}
	if r.Price <= 0 {
		return errors.New("price must be positive")
	}
	if r.Bedrooms < 0 || r.Bathrooms < 0 {
		return errors.New("bedrooms and bathrooms cannot be negative")
	}
	if r.Address == "" || r.City == "" || r.State == "" {
		return errors.New("address, city and state are required")
	}
	if r.CommissionRate < 0 || r.CommissionRate > 100 {
		return errors.New("commission_rate must be between 0 and 100")
	}
	return nil
}
