package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductType identifies what kind of product a sticker row represents.
type ProductType string

const (
	ProductCalco ProductType = "calco"
	ProductJarro ProductType = "jarro"
	ProductIman  ProductType = "iman"
)

// ProductTypeOrder is the fixed display order used wherever products are
// grouped by type (checkout messages, catalog tabs).
var ProductTypeOrder = []ProductType{ProductCalco, ProductJarro, ProductIman}

// Valid reports whether t is a known product type.
func (t ProductType) Valid() bool {
	return t == ProductCalco || t == ProductJarro || t == ProductIman
}

// BaseType distinguishes decal backings. It is meaningful only for calcos;
// other product types carry a nil base type.
type BaseType string

const (
	BaseBlanca      BaseType = "base_blanca"
	BaseHolografica BaseType = "base_holografica"
)

func (b BaseType) Valid() bool {
	return b == BaseBlanca || b == BaseHolografica
}

// StickerStatus is the publication state. Only StatusActive is visible to the
// public catalog.
type StickerStatus string

const (
	StatusDraft    StickerStatus = "draft"
	StatusActive   StickerStatus = "active"
	StatusArchived StickerStatus = "archived"
)

func (s StickerStatus) Valid() bool {
	return s == StatusDraft || s == StatusActive || s == StatusArchived
}

// Sticker is a catalog product.
type Sticker struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	ModelNumber   string        `json:"model_number" db:"model_number"`
	NameES        string        `json:"name_es" db:"name_es"`
	NameEN        string        `json:"name_en" db:"name_en"`
	DescriptionES *string       `json:"description_es" db:"description_es"`
	DescriptionEN *string       `json:"description_en" db:"description_en"`
	Slug          string        `json:"slug" db:"slug"`
	ProductType   ProductType   `json:"product_type" db:"product_type"`
	BaseType      *BaseType     `json:"base_type" db:"base_type"`
	PriceARS      int64         `json:"price_ars" db:"price_ars"`
	Stock         int           `json:"stock" db:"stock"`
	ImageURL      *string       `json:"image_url" db:"image_url"`
	ImagePath     *string       `json:"image_path" db:"image_path"`
	Status        StickerStatus `json:"status" db:"status"`
	IsFeatured    bool          `json:"is_featured" db:"is_featured"`
	SortOrder     int           `json:"sort_order" db:"sort_order"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// StickerWithTags is a sticker together with its full associated tag set.
type StickerWithTags struct {
	Sticker
	Tags []*Tag `json:"tags"`
}

// Tag is a bilingual category label, many-to-many associated with stickers.
type Tag struct {
	ID        uuid.UUID `json:"id" db:"id"`
	NameES    string    `json:"name_es" db:"name_es"`
	NameEN    string    `json:"name_en" db:"name_en"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SortKey selects the catalog ordering. Exactly one key is active at a time.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
)

// CatalogFilter is a query descriptor for the public catalog. All fields are
// optional; the zero value means "first page of everything active".
type CatalogFilter struct {
	Search      string
	TagSlug     string
	ProductType ProductType
	BaseType    BaseType
	Sort        SortKey
	Page        int
}

// Catalog constants shared between the query composer and its callers.
const (
	ItemsPerPage      = 24
	FeaturedLimit     = 8
	RelatedLimit      = 4
	LowStockThreshold = 5
)

// StickerUpdate is a partial field set for a sticker update. Nil fields are
// left untouched. TagIDs follows the association rewrite rule: nil leaves the
// associations alone, a non-nil list (even empty) replaces them wholesale.
type StickerUpdate struct {
	ModelNumber   *string
	NameES        *string
	NameEN        *string
	DescriptionES *string
	DescriptionEN *string
	Slug          *string
	ProductType   *ProductType
	BaseType      *BaseType
	PriceARS      *int64
	Stock         *int
	ImageURL      *string
	ImagePath     *string
	Status        *StickerStatus
	IsFeatured    *bool
	SortOrder     *int
	TagIDs        *[]uuid.UUID
}

// StockUpdate is one entry of a bulk stock update.
type StockUpdate struct {
	ID    uuid.UUID `json:"id"`
	Stock int       `json:"stock"`
}

// DashboardStats summarizes inventory for the admin landing page.
type DashboardStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Draft    int `json:"draft"`
	LowStock int `json:"low_stock"`
}
