package auth

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("token is malformed or has an invalid signature")
	ErrTokenRevoked   = errors.New("token has been revoked")
	ErrTokenWrongType = errors.New("token is not valid for this operation")
)

// Claims are the JWT claims carried by both access and refresh tokens.
type Claims struct {
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenService issues and validates self-contained JWT token pairs. Validation
// needs no store lookup beyond the in-process revocation list.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	mu      sync.RWMutex
	revoked map[string]struct{}
}

// NewTokenService creates a TokenService signing with secret. Access tokens
// live for accessTTL, refresh tokens for refreshTTL.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoked:    make(map[string]struct{}),
	}
}

// TokenPair holds a freshly issued access/refresh token pair.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// IssueTokenPair mints an access and a refresh token for the user.
func (s *TokenService) IssueTokenPair(userID uint64) (*TokenPair, error) {
	access, err := s.sign(userID, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(userID, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// ValidateAccess decodes an access token and returns the subject user ID.
// Refresh tokens are rejected with ErrTokenWrongType.
func (s *TokenService) ValidateAccess(tokenString string) (uint64, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return 0, err
	}
	if claims.TokenType != TokenTypeAccess {
		return 0, ErrTokenWrongType
	}
	return subjectID(claims)
}

// Refresh validates a refresh token and mints a new access token for the same
// subject. Access tokens are rejected with ErrTokenWrongType.
func (s *TokenService) Refresh(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	if claims.TokenType != TokenTypeRefresh {
		return "", ErrTokenWrongType
	}
	userID, err := subjectID(claims)
	if err != nil {
		return "", err
	}
	return s.sign(userID, TokenTypeAccess, s.accessTTL)
}

// Revoke puts the token's ID on the revocation list. Expired and malformed
// tokens are rejected; revoking is idempotent.
func (s *TokenService) Revoke(tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.revoked[claims.ID] = struct{}{}
	s.mu.Unlock()
	return nil
}

func (s *TokenService) sign(userID uint64, tokenType TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	s.mu.RLock()
	_, isRevoked := s.revoked[claims.ID]
	s.mu.RUnlock()
	if isRevoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

func subjectID(claims *Claims) (uint64, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenMalformed
	}
	return id, nil
}
