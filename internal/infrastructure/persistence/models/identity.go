package models

import (
	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate
type UserModel struct {
	AggregateModel
	Name         string              `gorm:"type:varchar(100);not null"`
	Email        string              `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string              `gorm:"type:varchar(255);not null"`
	Role         string              `gorm:"type:varchar(20);not null;default:'user'"`
	Avatar       string              `gorm:"type:varchar(500)"`
	Cart         []identity.CartItem `gorm:"type:text;serializer:json"`
	Wishlist     []uuid.UUID         `gorm:"type:text;serializer:json"`
	Addresses    []identity.Address  `gorm:"type:text;serializer:json"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Role:              identity.Role(m.Role),
		Avatar:            m.Avatar,
		Cart:              m.Cart,
		Wishlist:          m.Wishlist,
		Addresses:         m.Addresses,
	}
	if u.Cart == nil {
		u.Cart = []identity.CartItem{}
	}
	if u.Wishlist == nil {
		u.Wishlist = []uuid.UUID{}
	}
	if u.Addresses == nil {
		u.Addresses = []identity.Address{}
	}
	return u
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Name = u.Name
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Role = string(u.Role)
	m.Avatar = u.Avatar
	m.Cart = u.Cart
	m.Wishlist = u.Wishlist
	m.Addresses = u.Addresses
}

// UserModelFromDomain creates a new persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
