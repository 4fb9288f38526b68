package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"pharma-supply/apperror"
	"pharma-supply/models/session"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	CodeLength = 6
	DefaultTTL = 5 * time.Minute
)

var codeSpace = big.NewInt(1_000_000)

// Service manages the single pending OTP session of each phone.
type Service struct {
	DB  *gorm.DB
	TTL time.Duration
	Now func() time.Time
}

// NewOTPService creates a new OTP service
func NewOTPService(db *gorm.DB) *Service {
	return &Service{
		DB:  db,
		TTL: DefaultTTL,
		Now: time.Now,
	}
}

// GenerateOTP returns a uniformly random 6-digit numeric code, leading zeros included.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// Issue creates the session for phone, replacing any existing one, with a
// fresh code, zero attempts and a TTL-long lifetime.
func (s *Service) Issue(ctx context.Context, phone string) (*session.TempSession, error) {
	code, err := GenerateOTP()
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("generate otp: %w", err))
	}

	now := s.Now().UTC()
	record := session.TempSession{
		Phone:     phone,
		OTPCode:   code,
		Attempts:  0,
		CreatedAt: now,
		ExpiresAt: now.Add(s.TTL),
	}
	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"otp_code", "attempts", "created_at", "expires_at"}),
	}).Create(&record).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &record, nil
}

// Get returns the stored session for phone, or nil when there is none.
// Expiry is not evaluated here.
func (s *Service) Get(ctx context.Context, phone string) (*session.TempSession, error) {
	var record session.TempSession
	err := s.DB.WithContext(ctx).Where("phone = ?", phone).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &record, nil
}

// Verify consumes the session when code matches. A wrong code counts an
// attempt and keeps the session; an expired session is removed.
func (s *Service) Verify(ctx context.Context, phone, code string) error {
	record, err := s.Get(ctx, phone)
	if err != nil {
		return err
	}
	if record == nil {
		return apperror.NotFound("No verification session found")
	}

	db := s.DB.WithContext(ctx)
	if record.IsExpiredAt(s.Now().UTC()) {
		if err := db.Where("phone = ?", phone).Delete(&session.TempSession{}).Error; err != nil {
			return apperror.Internal(err)
		}
		return apperror.Expired("OTP has expired")
	}

	if subtle.ConstantTimeCompare([]byte(record.OTPCode), []byte(code)) != 1 {
		err := db.Model(&session.TempSession{}).
			Where("phone = ?", phone).
			UpdateColumn("attempts", gorm.Expr("attempts + ?", 1)).Error
		if err != nil {
			return apperror.Internal(err)
		}
		return apperror.Unauthorized("Incorrect OTP code")
	}

	// Only one concurrent verify may consume the session.
	result := db.Where("phone = ? AND otp_code = ?", phone, record.OTPCode).Delete(&session.TempSession{})
	if result.Error != nil {
		return apperror.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("No verification session found")
	}
	return nil
}
