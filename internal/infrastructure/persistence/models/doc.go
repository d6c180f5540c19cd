// Package models contains the GORM persistence models behind the catalog,
// identity and trade repositories. Domain aggregates carry no ORM tags; each
// model converts with FromDomain / ToDomain.
//
// Lists that the storefront always reads together with their owner (product
// images, sizes and colors; cart, wishlist and addresses; shipping address and
// payment result) are stored as JSON columns. Order lines live in their own
// table so that they can be queried per product.
package models
