package i18n

import (
	"testing"

	"calcosnqn/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{1500.99, "$ 1.501"},
		{1500.49, "$ 1.500"},
		{1000, "$ 1.000"},
		{999, "$ 999"},
		{0, "$ 0"},
		{1234567, "$ 1.234.567"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatPrice(tc.amount))
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Holográfica", "holografica"},
		{"Base Blanca", "base-blanca"},
		{"--hello--", "hello"},
		{"Gato!! Espacial??", "gato-espacial"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in))
	}
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, LocaleEN, ParseLocale("en"))
	assert.Equal(t, LocaleES, ParseLocale("es"))
	assert.Equal(t, LocaleES, ParseLocale(""))
	assert.Equal(t, LocaleES, ParseLocale("fr"))
}

func TestLocalizedName(t *testing.T) {
	assert.Equal(t, "Gato", LocalizedName("Gato", "Cat", LocaleES))
	assert.Equal(t, "Cat", LocalizedName("Gato", "Cat", LocaleEN))
}

func TestLocalizedDescription(t *testing.T) {
	es := "descripción"
	en := "description"

	assert.Equal(t, &es, LocalizedDescription(&es, &en, LocaleES))
	assert.Equal(t, &en, LocalizedDescription(&es, &en, LocaleEN))
	assert.Nil(t, LocalizedDescription(nil, &en, LocaleES))
}

func TestBaseTypeLabel(t *testing.T) {
	holo := domain.BaseHolografica
	blanca := domain.BaseBlanca

	assert.Equal(t, "Base Holográfica", BaseTypeLabel(&holo, LocaleES))
	assert.Equal(t, "Holographic Base", BaseTypeLabel(&holo, LocaleEN))
	assert.Equal(t, "Base Blanca", BaseTypeLabel(&blanca, LocaleES))
	assert.Equal(t, "White Base", BaseTypeLabel(&blanca, LocaleEN))
	assert.Equal(t, "", BaseTypeLabel(nil, LocaleES))
}

func TestProductTypeLabel(t *testing.T) {
	assert.Equal(t, "Calcos", ProductTypeLabel(domain.ProductCalco, LocaleES))
	assert.Equal(t, "Decals", ProductTypeLabel(domain.ProductCalco, LocaleEN))
	assert.Equal(t, "Jarros", ProductTypeLabel(domain.ProductJarro, LocaleES))
	assert.Equal(t, "Mugs", ProductTypeLabel(domain.ProductJarro, LocaleEN))
	assert.Equal(t, "Imanes", ProductTypeLabel(domain.ProductIman, LocaleES))
	assert.Equal(t, "Magnets", ProductTypeLabel(domain.ProductIman, LocaleEN))
}
