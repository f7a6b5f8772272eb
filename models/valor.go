package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CategoryKey выводит ключ категории (valor) из ее названия:
// нижний регистр, без диакритики, только [a-z0-9], слова через "_".
// "Café Especial" -> "cafe_especial". Повторное применение ничего не меняет.
func CategoryKey(nombre string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToLower(nombre),
	)
	if err != nil {
		stripped = strings.ToLower(nombre)
	}

	var b strings.Builder
	for _, r := range stripped {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == '_' || unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), "_")
}
