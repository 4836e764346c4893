package entities

// AdminUser is the single credential checked by /auth/login (§6), backing
// the admin-guarded supplemented endpoints (§3 of SPEC_FULL.md).
type AdminUser struct {
	Base
	Email        string `json:"email" gorm:"type:varchar(255);uniqueIndex"`
	PasswordHash string `json:"-" gorm:"column:password_hash;type:varchar(255)"`
}

func (AdminUser) TableName() string { return "admin_users" }
