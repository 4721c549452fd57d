package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordStrengthScore = 3

	usernamePattern   = `^[a-zA-Z0-9_]+$` // Alphanumeric with underscores
	minUsernameLength = 3
	maxUsernameLength = 20
)

// Token claim keys carried by operator tokens.
const (
	ClaimOperatorID = "operatorID"
	ClaimUsername   = "username"
)

var (
	usernameRegex = regexp.MustCompile(usernamePattern)

	// passwordHashCost is the bcrypt work factor for operator passwords.
	passwordHashCost = 14

	ErrUsernameTooShort      = errors.New("username too short")
	ErrUsernameTooLong       = errors.New("username too long")
	ErrInvalidUsernameFormat = errors.New("invalid username format")
	ErrWeakPassword          = errors.New("weak password")
	ErrInvalidClaims         = errors.New("invalid operator claims")
)

// Operator is a user allowed to start and control simulations. Usernames are
// stored lower-case so uniqueness ignores case.
type Operator struct {
	ID           uuid.UUID `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
}

// OperatorConfig holds parameters for creating an Operator from a plain password.
type OperatorConfig struct {
	ID            uuid.UUID
	Username      string
	PlainPassword string
}

// NewOperator normalizes and validates the credentials and hashes the password.
func NewOperator(config OperatorConfig) (*Operator, error) {
	username := NormalizeUsername(config.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	if err := validatePassword(config.PlainPassword); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(config.PlainPassword)
	if err != nil {
		return nil, err
	}

	return &Operator{
		ID:           config.ID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// NormalizeUsername trims and lower-cases a username for storage and lookup.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Claims returns the token claims identifying o.
func (o *Operator) Claims() map[string]interface{} {
	return map[string]interface{}{
		ClaimOperatorID: o.ID.String(),
		ClaimUsername:   o.Username,
	}
}

// OperatorIDFromClaims extracts the operator id from decoded token claims.
func OperatorIDFromClaims(claims map[string]interface{}) (uuid.UUID, error) {
	raw, ok := claims[ClaimOperatorID].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s missing", ErrInvalidClaims, ClaimOperatorID)
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s is not an operator id", ErrInvalidClaims, ClaimOperatorID)
	}
	return id, nil
}

// VerifyPassword verifies if the given password matches the stored hash.
func (o *Operator) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password))
	return err == nil
}

// validateUsername validates the username.
func validateUsername(username string) error {
	if len(username) < minUsernameLength {
		return ErrUsernameTooShort
	}
	if len(username) > maxUsernameLength {
		return ErrUsernameTooLong
	}
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsernameFormat
	}
	return nil
}

// validatePassword checks the strength of the password.
func validatePassword(password string) error {
	result := zxcvbn.PasswordStrength(password, nil)
	if result.Score < minPasswordStrengthScore {
		return ErrWeakPassword
	}
	return nil
}

// hashPassword generates a bcrypt hash for the given password.
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	return string(bytes), err
}

// IsValidationError reports whether err comes from credential validation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrUsernameTooShort) ||
		errors.Is(err, ErrUsernameTooLong) ||
		errors.Is(err, ErrInvalidUsernameFormat) ||
		errors.Is(err, ErrWeakPassword)
}
