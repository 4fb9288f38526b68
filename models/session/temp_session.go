package session

import (
	"time"
)

// TempSession is the single pending OTP challenge for a phone.
type TempSession struct {
	Phone     string    `gorm:"type:varchar(20);primaryKey" json:"phone"`
	OTPCode   string    `gorm:"column:otp_code;type:varchar(6);not null" json:"otp_code"`
	Attempts  int       `gorm:"not null" json:"attempts"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

// IsExpiredAt reports whether the session is past its expiry at t.
func (s *TempSession) IsExpiredAt(t time.Time) bool {
	return t.After(s.ExpiresAt)
}
