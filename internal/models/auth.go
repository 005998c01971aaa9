package models

// LoginRequest carries a login submission
type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// RefreshRequest carries a token refresh submission
type RefreshRequest struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token" binding:"required"`
}

// TokenResponse is returned on login and refresh
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds until the access token expires
	User         *User  `json:"user,omitempty"`
}

// DashboardStats is the agent's landing-page summary
type DashboardStats struct {
	ActiveListings         int     `json:"active_listings" db:"active_listings"`
	NewInquiries           int     `json:"new_inquiries" db:"new_inquiries"`
	UpcomingViewings       int     `json:"upcoming_viewings" db:"upcoming_viewings"`
	InProgressTransactions int     `json:"in_progress_transactions" db:"in_progress_transactions"`
	PendingReviews         int     `json:"pending_reviews" db:"pending_reviews"`
	AverageRating          float64 `json:"average_rating" db:"average_rating"`
}
