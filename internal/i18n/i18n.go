// Package i18n holds the locale-aware formatting helpers shared by the
// storefront and the checkout message builder.
package i18n

import (
	"math"

	"calcosnqn/internal/domain"

	"github.com/gosimple/slug"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is one of the two storefront languages.
type Locale string

const (
	LocaleES Locale = "es"
	LocaleEN Locale = "en"

	// DefaultLocale is used when a request carries no locale segment.
	DefaultLocale = LocaleES
)

// ParseLocale maps a raw path segment to a supported locale, falling back to
// the default for anything unknown.
func ParseLocale(s string) Locale {
	if Locale(s) == LocaleEN {
		return LocaleEN
	}
	return LocaleES
}

// LocalizedName selects the name for the locale.
func LocalizedName(nameES, nameEN string, loc Locale) string {
	if loc == LocaleEN {
		return nameEN
	}
	return nameES
}

// LocalizedDescription selects the optional description for the locale.
func LocalizedDescription(descES, descEN *string, loc Locale) *string {
	if loc == LocaleEN {
		return descEN
	}
	return descES
}

var baseTypeLabels = map[Locale]map[domain.BaseType]string{
	LocaleES: {
		domain.BaseBlanca:      "Base Blanca",
		domain.BaseHolografica: "Base Holográfica",
	},
	LocaleEN: {
		domain.BaseBlanca:      "White Base",
		domain.BaseHolografica: "Holographic Base",
	},
}

// BaseTypeLabel returns the display label for a base type, or "" when the
// product has no base type.
func BaseTypeLabel(bt *domain.BaseType, loc Locale) string {
	if bt == nil {
		return ""
	}
	return baseTypeLabels[loc][*bt]
}

var productTypeLabels = map[Locale]map[domain.ProductType]string{
	LocaleES: {
		domain.ProductCalco: "Calcos",
		domain.ProductJarro: "Jarros",
		domain.ProductIman:  "Imanes",
	},
	LocaleEN: {
		domain.ProductCalco: "Decals",
		domain.ProductJarro: "Mugs",
		domain.ProductIman:  "Magnets",
	},
}

// ProductTypeLabel returns the plural display label for a product type.
func ProductTypeLabel(pt domain.ProductType, loc Locale) string {
	return productTypeLabels[loc][pt]
}

var pricePrinter = message.NewPrinter(language.MustParse("es-AR"))

// FormatPrice renders an ARS amount rounded to the nearest whole peso with
// es-AR thousands separators and no decimal places: 1500.99 -> "$ 1.501".
func FormatPrice(amount float64) string {
	return pricePrinter.Sprintf("$ %d", int64(math.Round(amount)))
}

// Slugify turns free text into a URL-safe slug: lowercased, accents stripped,
// runs of non-alphanumerics collapsed to single hyphens, edges trimmed.
func Slugify(text string) string {
	return slug.Make(text)
}
