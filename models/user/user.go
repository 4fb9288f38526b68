package user

import (
	"time"
)

// User is an account created after a verified phone sets its password.
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Phone        string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_users_phone" json:"phone"`
	PasswordHash string    `gorm:"column:password;type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
