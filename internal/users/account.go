package users

import (
	"strings"
	"time"
)

// Account is one registered user of the identity service.
type Account struct {
	UserID       string    `gorm:"column:user_id;primaryKey;size:190;not null"`
	Email        string    `gorm:"column:email;size:320;not null;uniqueIndex"`
	DisplayName  string    `gorm:"column:display_name;size:320"`
	PasswordHash string    `gorm:"column:password_hash;size:190;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName exposes the table backing user accounts.
func (Account) TableName() string {
	return "user_accounts"
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
