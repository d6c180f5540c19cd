package models

import (
	"github.com/marvelstore/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	AggregateModel
	Name          string                 `gorm:"type:varchar(200);not null"`
	Description   string                 `gorm:"type:text;not null"`
	Price         decimal.Decimal        `gorm:"type:decimal(10,2);not null;index"`
	OriginalPrice *decimal.Decimal       `gorm:"type:decimal(10,2)"`
	Category      string                 `gorm:"type:varchar(30);not null;index"`
	Character     string                 `gorm:"column:character_name;type:varchar(50);not null;index"`
	Images        []catalog.ProductImage `gorm:"type:text;serializer:json"`
	Stock         int                    `gorm:"not null;default:0"`
	Sizes         []catalog.Size         `gorm:"type:text;serializer:json"`
	Colors        []catalog.Color        `gorm:"type:text;serializer:json"`
	Rating        float64                `gorm:"not null;default:0"`
	NumReviews    int                    `gorm:"not null;default:0"`
	Featured      bool                   `gorm:"not null;default:false;index"`
	IsActive      bool                   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Price:             m.Price,
		OriginalPrice:     m.OriginalPrice,
		Category:          catalog.Category(m.Category),
		Character:         catalog.Character(m.Character),
		Images:            m.Images,
		Stock:             m.Stock,
		Sizes:             m.Sizes,
		Colors:            m.Colors,
		Rating:            m.Rating,
		NumReviews:        m.NumReviews,
		Featured:          m.Featured,
		IsActive:          m.IsActive,
	}
	if p.Images == nil {
		p.Images = []catalog.ProductImage{}
	}
	if p.Sizes == nil {
		p.Sizes = []catalog.Size{}
	}
	if p.Colors == nil {
		p.Colors = []catalog.Color{}
	}
	return p
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price
	m.OriginalPrice = p.OriginalPrice
	m.Category = string(p.Category)
	m.Character = string(p.Character)
	m.Images = p.Images
	m.Stock = p.Stock
	m.Sizes = p.Sizes
	m.Colors = p.Colors
	m.Rating = p.Rating
	m.NumReviews = p.NumReviews
	m.Featured = p.Featured
	m.IsActive = p.IsActive
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
