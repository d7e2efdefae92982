package models

import (
	"github.com/shopadmin/backend/internal/domain/account"
	"github.com/shopadmin/backend/internal/domain/order"
)

// UserDocument is the stored layout of a customer account
type UserDocument struct {
	FullName   Text      `json:"fullName"`
	Email      Text      `json:"email"`
	CreatedAt  Timestamp `json:"createdAt"`
	LastActive Timestamp `json:"lastActive"`
}

// ToDomain converts the document into a User
func (d *UserDocument) ToDomain(id string) *account.User {
	return &account.User{
		ID:         id,
		FullName:   d.FullName.String(),
		Email:      d.Email.String(),
		CreatedAt:  d.CreatedAt.Time,
		LastActive: d.LastActive.Time,
	}
}

// ToOwner converts the document into the owner view used by order listings
func (d *UserDocument) ToOwner(id string) order.Owner {
	return order.Owner{
		ID:       id,
		FullName: d.FullName.String(),
		Email:    d.Email.String(),
	}
}

// DecodeUser reads a user document
func DecodeUser(id string, data map[string]any) (*UserDocument, error) {
	var doc UserDocument
	if err := decodeData(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
