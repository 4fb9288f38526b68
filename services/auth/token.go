package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// ActionSetPassword marks a temp token that allows exactly one password set.
	ActionSetPassword = "set_password_allowed"

	LoginTokenTTL = 24 * time.Hour
	TempTokenTTL  = 30 * time.Minute
)

var errInvalidToken = errors.New("invalid token")

// Claims is the payload of both token kinds. Login tokens carry UserID;
// temp tokens carry Phone and Action.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Action string `json:"action,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), now: time.Now}
}

func (s *TokenService) sign(claims Claims, ttl time.Duration) (string, error) {
	issuedAt := s.now()
	claims.IssuedAt = jwt.NewNumericDate(issuedAt)
	claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// IssueLoginToken returns a 24h token bound to userID.
func (s *TokenService) IssueLoginToken(userID string) (string, error) {
	return s.sign(Claims{UserID: userID}, LoginTokenTTL)
}

// IssueTempToken returns a 30 minute token allowing phone to set its password.
func (s *TokenService) IssueTempToken(phone string) (string, error) {
	return s.sign(Claims{Phone: phone, Action: ActionSetPassword}, TempTokenTTL)
}

// Parse verifies signature and expiry and returns the claims.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}
