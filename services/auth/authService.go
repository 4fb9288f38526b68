package auth

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pharma-supply/apperror"
	"pharma-supply/metrics"
	"pharma-supply/models/user"
	"pharma-supply/services/otp"
	authTypes "pharma-supply/types/auth"
)

const invalidCredentials = "Invalid login credentials"

var phonePattern = regexp.MustCompile(`^\d{10,11}$`)

// StartResult tells the client which step comes next. OTP is set only when a
// verification session was issued.
type StartResult struct {
	Action string
	OTP    string
}

// AuthService runs the phone -> OTP -> password -> login flow.
type AuthService struct {
	db        *gorm.DB
	otp       *otp.Service
	tokens    *TokenService
	passwords *PasswordService
}

func NewAuthService(db *gorm.DB, otpService *otp.Service, tokens *TokenService, passwords *PasswordService) *AuthService {
	return &AuthService{
		db:        db,
		otp:       otpService,
		tokens:    tokens,
		passwords: passwords,
	}
}

// ValidatePhone reports whether phone is 10 or 11 ASCII digits.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func (s *AuthService) findByPhone(ctx context.Context, db *gorm.DB, phone string) (*user.User, error) {
	var u user.User
	err := db.WithContext(ctx).Where("phone = ?", phone).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &u, nil
}

// StartAuth routes a registered phone to login and issues an OTP otherwise.
func (s *AuthService) StartAuth(ctx context.Context, phone string) (res *StartResult, err error) {
	defer func() { metrics.RecordAuthEvent("start", err) }()

	if !ValidatePhone(phone) {
		return nil, apperror.Validation("Invalid phone number")
	}

	existing, err := s.findByPhone(ctx, s.db, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &StartResult{Action: authTypes.ActionLogin}, nil
	}

	session, err := s.otp.Issue(ctx, phone)
	if err != nil {
		return nil, err
	}
	return &StartResult{Action: authTypes.ActionVerifyOTP, OTP: session.OTPCode}, nil
}

// VerifyOTP consumes the phone's session and returns a temp token.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (token string, err error) {
	defer func() { metrics.RecordAuthEvent("verify_otp", err) }()

	if err := s.otp.Verify(ctx, phone, code); err != nil {
		return "", err
	}
	token, err = s.tokens.IssueTempToken(phone)
	if err != nil {
		return "", apperror.Internal(err)
	}
	return token, nil
}

// SetPassword creates the User for a phone proven by tempToken. A phone can
// be registered once.
func (s *AuthService) SetPassword(ctx context.Context, phone, password, tempToken string) (err error) {
	defer func() { metrics.RecordAuthEvent("set_password", err) }()

	claims, err := s.tokens.Parse(tempToken)
	if err != nil {
		return apperror.Unauthorized("Token expired or invalid")
	}
	if claims.Action != ActionSetPassword || claims.Phone != phone {
		return apperror.Unauthorized("Invalid token")
	}
	if password == "" {
		return apperror.Validation("password is required")
	}

	hash, err := s.passwords.Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return apperror.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return apperror.Internal(err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.findByPhone(ctx, tx, phone)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.Conflict("Phone number already registered")
		}

		newUser := user.User{
			ID:           uuid.NewString(),
			Phone:        phone,
			PasswordHash: hash,
		}
		if err := tx.Create(&newUser).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("Phone number already registered")
			}
			return apperror.Internal(err)
		}
		return nil
	})
}

// Login checks the password and returns a login token. Unknown phones and
// wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, phone, password string) (token string, err error) {
	defer func() { metrics.RecordAuthEvent("login", err) }()

	u, err := s.findByPhone(ctx, s.db, phone)
	if err != nil {
		return "", err
	}
	if u == nil || !s.passwords.Verify(u.PasswordHash, password) {
		return "", apperror.Unauthorized(invalidCredentials)
	}

	token, err = s.tokens.IssueLoginToken(u.ID)
	if err != nil {
		return "", apperror.Internal(err)
	}
	return token, nil
}

// Authenticate resolves a login token to its User.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*user.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperror.Unauthorized("Token expired or invalid")
	}
	if claims.UserID == "" || claims.Action != "" {
		return nil, apperror.Unauthorized("Invalid token")
	}

	var u user.User
	err = s.db.WithContext(ctx).Where("id = ?", claims.UserID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Unauthorized("User does not exist")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &u, nil
}
