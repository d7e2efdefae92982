package identity

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/shopadmin/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// AdminID is the document id of the single admin account
const AdminID = "admin#1"

// Password cost for bcrypt
const bcryptCost = 12

// Password length limits. bcrypt ignores input beyond 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// Admin is the operator account that signs in to the admin console
type Admin struct {
	ID       string
	Username string
	// PasswordHash holds a bcrypt hash. Accounts provisioned before hashing was
	// introduced store the plain password here until the next successful login.
	PasswordHash string
	ImageURL     string
}

// VerifyPassword checks password against the stored credential.
// legacy is true when the stored credential was plain text and should be re-hashed.
func (a *Admin) VerifyPassword(password string) (ok bool, legacy bool) {
	if isBcryptHash(a.PasswordHash) {
		return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil, false
	}
	if a.PasswordHash == "" {
		return false, false
	}
	return subtle.ConstantTimeCompare([]byte(a.PasswordHash), []byte(password)) == 1, true
}

// HasLegacyPassword returns true if the credential is stored in plain text
func (a *Admin) HasLegacyPassword() bool {
	return a.PasswordHash != "" && !isBcryptHash(a.PasswordHash)
}

// SetPassword hashes and stores a new password
func (a *Admin) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	a.PasswordHash = string(hash)
	return nil
}

// ChangePassword verifies the current password and stores the new one.
// newPassword and confirm must match.
func (a *Admin) ChangePassword(current, newPassword, confirm string) error {
	if ok, _ := a.VerifyPassword(current); !ok {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if newPassword != confirm {
		return shared.NewDomainError("PASSWORD_MISMATCH", "New passwords do not match")
	}
	return a.SetPassword(newPassword)
}

// SetImage replaces the avatar URL
func (a *Admin) SetImage(imageURL string) error {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return shared.NewDomainError("INVALID_IMAGE", "Image URL cannot be empty")
	}
	a.ImageURL = imageURL
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	if len(password) > MaxPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 bytes")
	}
	return nil
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

// AdminRepository loads and stores the admin account document
type AdminRepository interface {
	Get(ctx context.Context) (*Admin, error)
	Save(ctx context.Context, admin *Admin) error
}
