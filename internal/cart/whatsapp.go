package cart

import (
	"fmt"
	"net/url"
	"strings"

	"calcosnqn/internal/domain"
	"calcosnqn/internal/i18n"
)

// CheckoutInfo carries the optional customer details appended to the order
// message.
type CheckoutInfo struct {
	Name string
	City string
}

// BuildWhatsAppMessage turns the cart contents into the multi-line order text.
// Items are grouped by product type in the fixed calco, jarro, iman order with
// a bolded header per non-empty group, followed by a bolded grand total and
// the optional customer lines.
func BuildWhatsAppMessage(items []Item, loc i18n.Locale, info CheckoutInfo) string {
	header := "Hola! Quiero hacer un pedido:"
	if loc == i18n.LocaleEN {
		header = "Hi! I would like to place an order:"
	}

	parts := []string{header}

	for _, pt := range domain.ProductTypeOrder {
		var lines []string
		for _, item := range items {
			if item.ProductType != pt {
				continue
			}
			lines = append(lines, itemLine(item, loc))
		}
		if len(lines) == 0 {
			continue
		}
		parts = append(parts, "", fmt.Sprintf("*%s*", i18n.ProductTypeLabel(pt, loc)))
		parts = append(parts, lines...)
	}

	var total int64
	for _, item := range items {
		total += item.PriceARS * int64(item.Quantity)
	}
	parts = append(parts, "", fmt.Sprintf("*Total: %s*", i18n.FormatPrice(float64(total))))

	if info.Name != "" || info.City != "" {
		parts = append(parts, "")
	}
	if info.Name != "" {
		label := "Nombre"
		if loc == i18n.LocaleEN {
			label = "Name"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", label, info.Name))
	}
	if info.City != "" {
		label := "Ciudad"
		if loc == i18n.LocaleEN {
			label = "City"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", label, info.City))
	}

	return strings.Join(parts, "\n")
}

func itemLine(item Item, loc i18n.Locale) string {
	name := i18n.LocalizedName(item.NameES, item.NameEN, loc)
	subtotal := i18n.FormatPrice(float64(item.PriceARS * int64(item.Quantity)))

	if label := i18n.BaseTypeLabel(item.BaseType, loc); label != "" {
		return fmt.Sprintf("- %s %s (%s) x%d = %s", item.ModelNumber, name, label, item.Quantity, subtotal)
	}
	return fmt.Sprintf("- %s %s x%d = %s", item.ModelNumber, name, item.Quantity, subtotal)
}

// BuildWhatsAppURL percent-encodes the message into a wa.me deep link that
// opens a chat with phone pre-filled.
func BuildWhatsAppURL(phone, message string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", phone, encoded)
}
