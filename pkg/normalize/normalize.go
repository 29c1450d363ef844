// Package normalize normaliza texto para búsquedas insensibles a acentos
// (los nombres de clientes llegan con y sin tildes: "Pérez" vs "Perez").
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)), // elimina marcas diacríticas
	norm.NFC,
)

// Fold devuelve s en minúsculas y sin diacríticos. Si la transformación
// falla (entrada no UTF-8 válida), devuelve s en minúsculas tal cual.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}
