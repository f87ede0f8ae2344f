package models

// UnitMemberCount is the number of approved guests in a unit
type UnitMemberCount struct {
	ID    int64  `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
	Count int    `json:"count" db:"count"`
}

// AdminStats is the response of GET /admin/stats
type AdminStats struct {
	Guests           int               `json:"guests"`
	Steps            int               `json:"steps"`
	Completions      int               `json:"completions"`
	UnitDistribution []UnitMemberCount `json:"unit_distribution"`
}

// AdminLoginRequest represents the admin login body
type AdminLoginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse carries the issued admin token
type AdminLoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// UploadRequest carries a base64 data URL image
type UploadRequest struct {
	Image    string `json:"image" binding:"required"`
	Filename string `json:"filename" binding:"required"`
}
