package models

import (
	"github.com/shopadmin/backend/internal/domain/identity"
)

// AdminDocument is the stored layout of the admin account. The password field
// keeps its historical name; it now holds a bcrypt hash.
type AdminDocument struct {
	Username Text `json:"username"`
	Password Text `json:"password"`
	ImageURL Text `json:"imageUrl"`
}

// ToDomain converts the document into an Admin
func (d *AdminDocument) ToDomain(id string) *identity.Admin {
	return &identity.Admin{
		ID:           id,
		Username:     d.Username.String(),
		PasswordHash: string(d.Password),
		ImageURL:     d.ImageURL.String(),
	}
}

// DecodeAdmin reads the admin document
func DecodeAdmin(id string, data map[string]any) (*identity.Admin, error) {
	var doc AdminDocument
	if err := decodeData(data, &doc); err != nil {
		return nil, err
	}
	return doc.ToDomain(id), nil
}

// EncodeAdmin converts an Admin into document data
func EncodeAdmin(a *identity.Admin) (map[string]any, error) {
	return encodeData(AdminDocument{
		Username: Text(a.Username),
		Password: Text(a.PasswordHash),
		ImageURL: Text(a.ImageURL),
	})
}
