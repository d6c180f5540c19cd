package catalog

import (
	"encoding/json"
	"strings"

	"github.com/marvelstore/backend/internal/domain/shared"
)

// Category is the merchandise category of a product
type Category string

const (
	CategoryShirts       Category = "shirts"
	CategoryPants        Category = "pants"
	CategoryBags         Category = "bags"
	CategoryPens         Category = "pens"
	CategoryAccessories  Category = "accessories"
	CategoryCollectibles Category = "collectibles"
	CategoryHoodies      Category = "hoodies"
	CategoryCaps         Category = "caps"
)

// Categories lists every valid category
var Categories = []Category{
	CategoryShirts, CategoryPants, CategoryBags, CategoryPens,
	CategoryAccessories, CategoryCollectibles, CategoryHoodies, CategoryCaps,
}

// IsValid reports whether c is one of the known categories
func (c Category) IsValid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Character is the Marvel character a product is themed on
type Character string

const (
	CharacterIronMan        Character = "iron-man"
	CharacterSpiderMan      Character = "spider-man"
	CharacterCaptainAmerica Character = "captain-america"
	CharacterThor           Character = "thor"
	CharacterHulk           Character = "hulk"
	CharacterBlackWidow     Character = "black-widow"
	CharacterBlackPanther   Character = "black-panther"
	CharacterDoctorStrange  Character = "doctor-strange"
	CharacterAvengers       Character = "avengers"
	CharacterGuardians      Character = "guardians"
	CharacterXMen           Character = "x-men"
	CharacterAll            Character = "all"
)

// DefaultCharacter is used when a product is created without a character
const DefaultCharacter = CharacterAvengers

// Characters lists every valid character
var Characters = []Character{
	CharacterIronMan, CharacterSpiderMan, CharacterCaptainAmerica, CharacterThor,
	CharacterHulk, CharacterBlackWidow, CharacterBlackPanther, CharacterDoctorStrange,
	CharacterAvengers, CharacterGuardians, CharacterXMen, CharacterAll,
}

// IsValid reports whether c is one of the known characters
func (c Character) IsValid() bool {
	for _, v := range Characters {
		if v == c {
			return true
		}
	}
	return false
}

// Size is an apparel size
type Size string

const (
	SizeXS      Size = "XS"
	SizeS       Size = "S"
	SizeM       Size = "M"
	SizeL       Size = "L"
	SizeXL      Size = "XL"
	SizeXXL     Size = "XXL"
	SizeOneSize Size = "One Size"
)

// Sizes lists every valid size
var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeOneSize}

// IsValid reports whether s is one of the known sizes
func (s Size) IsValid() bool {
	for _, v := range Sizes {
		if v == s {
			return true
		}
	}
	return false
}

// Color is a named product color. Hex is a free-form display value; the
// admin UI sends CSS names as well as #rrggbb codes.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// ParseSizes decodes the JSON-array string used by multipart product forms.
// An empty string yields an empty list.
func ParseSizes(encoded string) ([]Size, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return []Size{}, nil
	}
	var sizes []Size
	if err := json.Unmarshal([]byte(encoded), &sizes); err != nil {
		return nil, shared.NewDomainError("INVALID_SIZES", "Sizes must be a JSON array of strings")
	}
	if err := validateSizes(sizes); err != nil {
		return nil, err
	}
	if sizes == nil {
		sizes = []Size{}
	}
	return sizes, nil
}

// ParseColors decodes the JSON-array string used by multipart product forms.
// An empty string yields an empty list.
func ParseColors(encoded string) ([]Color, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return []Color{}, nil
	}
	var colors []Color
	if err := json.Unmarshal([]byte(encoded), &colors); err != nil {
		return nil, shared.NewDomainError("INVALID_COLORS", "Colors must be a JSON array of {name, hex} objects")
	}
	if err := validateColors(colors); err != nil {
		return nil, err
	}
	if colors == nil {
		colors = []Color{}
	}
	return colors, nil
}

func validateSizes(sizes []Size) error {
	for _, s := range sizes {
		if !s.IsValid() {
			return shared.NewDomainError("INVALID_SIZE", "Invalid size: "+string(s))
		}
	}
	return nil
}

func validateColors(colors []Color) error {
	for _, c := range colors {
		if strings.TrimSpace(c.Name) == "" {
			return shared.NewDomainError("INVALID_COLOR", "Color name cannot be empty")
		}
	}
	return nil
}
