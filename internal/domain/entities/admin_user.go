package entities

// AdminUser is a backoffice account allowed to trigger investigations.
type AdminUser struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}
