package mongostore

import (
	"time"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/catalog"
	"github.com/marvelstore/backend/internal/domain/identity"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/marvelstore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type imageDocument struct {
	ID       string `bson:"_id"`
	URL      string `bson:"url"`
	PublicID string `bson:"publicId,omitempty"`
}

type colorDocument struct {
	Name string `bson:"name"`
	Hex  string `bson:"hex"`
}

type productDocument struct {
	ID            string                `bson:"_id"`
	Name          string                `bson:"name"`
	Description   string                `bson:"description"`
	Price         primitive.Decimal128  `bson:"price"`
	OriginalPrice *primitive.Decimal128 `bson:"originalPrice,omitempty"`
	Category      string                `bson:"category"`
	Character     string                `bson:"character"`
	Images        []imageDocument       `bson:"images"`
	Stock         int                   `bson:"stock"`
	Sizes         []string              `bson:"sizes"`
	Colors        []colorDocument       `bson:"colors"`
	Rating        float64               `bson:"rating"`
	NumReviews    int                   `bson:"numReviews"`
	Featured      bool                  `bson:"featured"`
	IsActive      bool                  `bson:"isActive"`
	Version       int                   `bson:"version"`
	CreatedAt     time.Time             `bson:"createdAt"`
	UpdatedAt     time.Time             `bson:"updatedAt"`
}

type cartItemDocument struct {
	ID        string `bson:"_id"`
	ProductID string `bson:"product"`
	Quantity  int    `bson:"quantity"`
	Size      string `bson:"size,omitempty"`
	Color     string `bson:"color,omitempty"`
}

type addressDocument struct {
	ID        string `bson:"_id"`
	Street    string `bson:"street"`
	City      string `bson:"city"`
	State     string `bson:"state,omitempty"`
	ZipCode   string `bson:"zipCode,omitempty"`
	Country   string `bson:"country"`
	IsDefault bool   `bson:"isDefault"`
}

type userDocument struct {
	ID        string             `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Role      string             `bson:"role"`
	Avatar    string             `bson:"avatar,omitempty"`
	Cart      []cartItemDocument `bson:"cart"`
	Wishlist  []string           `bson:"wishlist"`
	Addresses []addressDocument  `bson:"addresses"`
	Version   int                `bson:"version"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type orderItemDocument struct {
	ID        string               `bson:"_id"`
	ProductID string               `bson:"product"`
	Name      string               `bson:"name"`
	Image     string               `bson:"image,omitempty"`
	Price     primitive.Decimal128 `bson:"price"`
	Quantity  int                  `bson:"quantity"`
	Size      string               `bson:"size,omitempty"`
	Color     string               `bson:"color,omitempty"`
}

type shippingAddressDocument struct {
	Street  string `bson:"street"`
	City    string `bson:"city"`
	State   string `bson:"state,omitempty"`
	ZipCode string `bson:"zipCode,omitempty"`
	Country string `bson:"country"`
}

type paymentResultDocument struct {
	ID           string `bson:"id"`
	Status       string `bson:"status"`
	UpdateTime   string `bson:"update_time"`
	EmailAddress string `bson:"email_address"`
}

type orderDocument struct {
	ID              string                  `bson:"_id"`
	UserID          string                  `bson:"user"`
	Items           []orderItemDocument     `bson:"orderItems"`
	ShippingAddress shippingAddressDocument `bson:"shippingAddress"`
	PaymentMethod   string                  `bson:"paymentMethod"`
	PaymentResult   *paymentResultDocument  `bson:"paymentResult,omitempty"`
	ItemsPrice      primitive.Decimal128    `bson:"itemsPrice"`
	TaxPrice        primitive.Decimal128    `bson:"taxPrice"`
	ShippingPrice   primitive.Decimal128    `bson:"shippingPrice"`
	TotalPrice      primitive.Decimal128    `bson:"totalPrice"`
	IsPaid          bool                    `bson:"isPaid"`
	PaidAt          *time.Time              `bson:"paidAt,omitempty"`
	Status          string                  `bson:"status"`
	IsDelivered     bool                    `bson:"isDelivered"`
	DeliveredAt     *time.Time              `bson:"deliveredAt,omitempty"`
	Version         int                     `bson:"version"`
	CreatedAt       time.Time               `bson:"createdAt"`
	UpdatedAt       time.Time               `bson:"updatedAt"`
}

// toDecimal128 cannot fail for values produced by decimal.Decimal.String
func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(d primitive.Decimal128) decimal.Decimal {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero
	}
	return v
}

func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func productToDocument(p *catalog.Product) productDocument {
	doc := productDocument{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       toDecimal128(p.Price),
		Category:    string(p.Category),
		Character:   string(p.Character),
		Images:      make([]imageDocument, len(p.Images)),
		Stock:       p.Stock,
		Sizes:       make([]string, len(p.Sizes)),
		Colors:      make([]colorDocument, len(p.Colors)),
		Rating:      p.Rating,
		NumReviews:  p.NumReviews,
		Featured:    p.Featured,
		IsActive:    p.IsActive,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.OriginalPrice != nil {
		op := toDecimal128(*p.OriginalPrice)
		doc.OriginalPrice = &op
	}
	for i, img := range p.Images {
		doc.Images[i] = imageDocument{ID: img.ID.String(), URL: img.URL, PublicID: img.PublicID}
	}
	for i, s := range p.Sizes {
		doc.Sizes[i] = string(s)
	}
	for i, c := range p.Colors {
		doc.Colors[i] = colorDocument{Name: c.Name, Hex: c.Hex}
	}
	return doc
}

func (d *productDocument) toDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: shared.RestoreAggregateRoot(parseID(d.ID), d.CreatedAt, d.UpdatedAt, d.Version),
		Name:              d.Name,
		Description:       d.Description,
		Price:             fromDecimal128(d.Price),
		Category:          catalog.Category(d.Category),
		Character:         catalog.Character(d.Character),
		Images:            make([]catalog.ProductImage, len(d.Images)),
		Stock:             d.Stock,
		Sizes:             make([]catalog.Size, len(d.Sizes)),
		Colors:            make([]catalog.Color, len(d.Colors)),
		Rating:            d.Rating,
		NumReviews:        d.NumReviews,
		Featured:          d.Featured,
		IsActive:          d.IsActive,
	}
	if d.OriginalPrice != nil {
		op := fromDecimal128(*d.OriginalPrice)
		p.OriginalPrice = &op
	}
	for i, img := range d.Images {
		p.Images[i] = catalog.ProductImage{ID: parseID(img.ID), URL: img.URL, PublicID: img.PublicID}
	}
	for i, s := range d.Sizes {
		p.Sizes[i] = catalog.Size(s)
	}
	for i, c := range d.Colors {
		p.Colors[i] = catalog.Color{Name: c.Name, Hex: c.Hex}
	}
	return p
}

func userToDocument(u *identity.User) userDocument {
	doc := userDocument{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.PasswordHash,
		Role:      string(u.Role),
		Avatar:    u.Avatar,
		Cart:      make([]cartItemDocument, len(u.Cart)),
		Wishlist:  make([]string, len(u.Wishlist)),
		Addresses: make([]addressDocument, len(u.Addresses)),
		Version:   u.Version,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	for i, c := range u.Cart {
		doc.Cart[i] = cartItemDocument{
			ID: c.ID.String(), ProductID: c.ProductID.String(),
			Quantity: c.Quantity, Size: c.Size, Color: c.Color,
		}
	}
	for i, id := range u.Wishlist {
		doc.Wishlist[i] = id.String()
	}
	for i, a := range u.Addresses {
		doc.Addresses[i] = addressDocument{
			ID: a.ID.String(), Street: a.Street, City: a.City, State: a.State,
			ZipCode: a.ZipCode, Country: a.Country, IsDefault: a.IsDefault,
		}
	}
	return doc
}

func (d *userDocument) toDomain() *identity.User {
	u := &identity.User{
		BaseAggregateRoot: shared.RestoreAggregateRoot(parseID(d.ID), d.CreatedAt, d.UpdatedAt, d.Version),
		Name:              d.Name,
		Email:             d.Email,
		PasswordHash:      d.Password,
		Role:              identity.Role(d.Role),
		Avatar:            d.Avatar,
		Cart:              make([]identity.CartItem, len(d.Cart)),
		Wishlist:          make([]uuid.UUID, len(d.Wishlist)),
		Addresses:         make([]identity.Address, len(d.Addresses)),
	}
	for i, c := range d.Cart {
		u.Cart[i] = identity.CartItem{
			ID: parseID(c.ID), ProductID: parseID(c.ProductID),
			Quantity: c.Quantity, Size: c.Size, Color: c.Color,
		}
	}
	for i, id := range d.Wishlist {
		u.Wishlist[i] = parseID(id)
	}
	for i, a := range d.Addresses {
		u.Addresses[i] = identity.Address{
			ID: parseID(a.ID), Street: a.Street, City: a.City, State: a.State,
			ZipCode: a.ZipCode, Country: a.Country, IsDefault: a.IsDefault,
		}
	}
	return u
}

func orderToDocument(o *trade.Order) orderDocument {
	doc := orderDocument{
		ID:     o.ID.String(),
		UserID: o.UserID.String(),
		Items:  make([]orderItemDocument, len(o.Items)),
		ShippingAddress: shippingAddressDocument{
			Street:  o.ShippingAddress.Street,
			City:    o.ShippingAddress.City,
			State:   o.ShippingAddress.State,
			ZipCode: o.ShippingAddress.ZipCode,
			Country: o.ShippingAddress.Country,
		},
		PaymentMethod: o.PaymentMethod,
		ItemsPrice:    toDecimal128(o.ItemsPrice),
		TaxPrice:      toDecimal128(o.TaxPrice),
		ShippingPrice: toDecimal128(o.ShippingPrice),
		TotalPrice:    toDecimal128(o.TotalPrice),
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		Status:        string(o.Status),
		IsDelivered:   o.IsDelivered,
		DeliveredAt:   o.DeliveredAt,
		Version:       o.Version,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for i, item := range o.Items {
		doc.Items[i] = orderItemDocument{
			ID: item.ID.String(), ProductID: item.ProductID.String(), Name: item.Name,
			Image: item.Image, Price: toDecimal128(item.Price), Quantity: item.Quantity,
			Size: item.Size, Color: item.Color,
		}
	}
	if o.PaymentResult != nil {
		doc.PaymentResult = &paymentResultDocument{
			ID:           o.PaymentResult.ID,
			Status:       o.PaymentResult.Status,
			UpdateTime:   o.PaymentResult.UpdateTime,
			EmailAddress: o.PaymentResult.EmailAddress,
		}
	}
	return doc
}

func (d *orderDocument) toDomain() *trade.Order {
	o := &trade.Order{
		BaseAggregateRoot: shared.RestoreAggregateRoot(parseID(d.ID), d.CreatedAt, d.UpdatedAt, d.Version),
		UserID:            parseID(d.UserID),
		Items:             make([]trade.OrderItem, len(d.Items)),
		ShippingAddress: trade.ShippingAddress{
			Street:  d.ShippingAddress.Street,
			City:    d.ShippingAddress.City,
			State:   d.ShippingAddress.State,
			ZipCode: d.ShippingAddress.ZipCode,
			Country: d.ShippingAddress.Country,
		},
		PaymentMethod: d.PaymentMethod,
		ItemsPrice:    fromDecimal128(d.ItemsPrice),
		TaxPrice:      fromDecimal128(d.TaxPrice),
		ShippingPrice: fromDecimal128(d.ShippingPrice),
		TotalPrice:    fromDecimal128(d.TotalPrice),
		IsPaid:        d.IsPaid,
		PaidAt:        d.PaidAt,
		Status:        trade.OrderStatus(d.Status),
		IsDelivered:   d.IsDelivered,
		DeliveredAt:   d.DeliveredAt,
	}
	for i, item := range d.Items {
		o.Items[i] = trade.OrderItem{
			ID: parseID(item.ID), ProductID: parseID(item.ProductID), Name: item.Name,
			Image: item.Image, Price: fromDecimal128(item.Price), Quantity: item.Quantity,
			Size: item.Size, Color: item.Color,
		}
	}
	if d.PaymentResult != nil {
		o.PaymentResult = &trade.PaymentResult{
			ID:           d.PaymentResult.ID,
			Status:       d.PaymentResult.Status,
			UpdateTime:   d.PaymentResult.UpdateTime,
			EmailAddress: d.PaymentResult.EmailAddress,
		}
	}
	return o
}
