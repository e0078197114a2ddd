package enums

import (
	"fmt"
	"slices"
)

// GoodCategory enumerates the catalog sections a good can be listed under.
type GoodCategory string

const (
	GoodCategoryFood        GoodCategory = "food"
	GoodCategoryClothes     GoodCategory = "clothes"
	GoodCategoryAccessories GoodCategory = "accessories"
	GoodCategoryElectronics GoodCategory = "electronics"
)

var validGoodCategories = []GoodCategory{
	GoodCategoryFood,
	GoodCategoryClothes,
	GoodCategoryAccessories,
	GoodCategoryElectronics,
}

// String implements fmt.Stringer.
func (c GoodCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known GoodCategory.
func (c GoodCategory) IsValid() bool {
	for _, candidate := range validGoodCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseGoodCategory converts raw input into a GoodCategory.
func ParseGoodCategory(value string) (GoodCategory, error) {
	for _, candidate := range validGoodCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid good category %q", value)
}

// GoodCategories returns every known category.
func GoodCategories() []GoodCategory {
	return slices.Clone(validGoodCategories)
}
