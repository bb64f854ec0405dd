// Package i18n provides localized user-facing messages for error codes.
package i18n

import (
	"bytes"
	"strings"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// BaseLocale is the canonical source locale for catalogs.
const BaseLocale = "en-US"

var supported = []language.Tag{
	language.AmericanEnglish,
	language.BrazilianPortuguese,
}

var matcher = language.NewMatcher(supported)

var catalogs = map[language.Tag]map[Code]string{
	language.AmericanEnglish:     enUS,
	language.BrazilianPortuguese: ptBR,
}

// Match resolves an Accept-Language header value to a supported locale tag.
// Unknown or empty values fall back to en-US.
func Match(acceptLanguage string) language.Tag {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return language.AmericanEnglish
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.AmericanEnglish
	}
	_, index, _ := matcher.Match(tags...)
	return supported[index]
}

// Format renders the localized message template for a code with the given
// metadata. It falls back to the en-US catalog for untranslated codes and to
// the code itself when no template exists.
// Templates are always executed even with nil/empty metadata to ensure
// consistent output (template variables without metadata render as empty).
func Format(locale language.Tag, code Code, metadata map[string]string) string {
	messages, ok := catalogs[locale]
	if !ok {
		messages = enUS
	}
	tmpl, ok := messages[code]
	if !ok {
		tmpl, ok = enUS[code]
		if !ok {
			return code
		}
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}
