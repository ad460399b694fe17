package generator

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// words splits an identifier on any non-alphanumeric rune.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// PascalCase turns "user-service" into "UserService".
func PascalCase(s string) string {
	// Casers are stateful and must not be shared.
	title := cases.Title(language.English, cases.NoLower)
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(title.String(w))
	}
	return b.String()
}

// CamelCase turns "user-service" into "userService".
func CamelCase(s string) string {
	p := PascalCase(s)
	if p == "" {
		return p
	}
	r := []rune(p)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// SnakeCase turns "user-service" or "UserService" into "user_service".
func SnakeCase(s string) string {
	var parts []string
	for _, w := range words(s) {
		var cur []rune
		var prev rune
		for _, r := range w {
			if unicode.IsUpper(r) && len(cur) > 0 && !unicode.IsUpper(prev) {
				parts = append(parts, string(cur))
				cur = nil
			}
			cur = append(cur, unicode.ToLower(r))
			prev = r
		}
		if len(cur) > 0 {
			parts = append(parts, string(cur))
		}
	}
	return strings.Join(parts, "_")
}

// tsImportPath maps src/services/user-service.ts to @/services/user-service.
func tsImportPath(file string) string {
	trimmed := strings.TrimPrefix(file, "src/")
	return "@/" + strings.TrimSuffix(trimmed, path.Ext(trimmed))
}

// pyModulePath maps src/services/user_service.py to src.services.user_service.
func pyModulePath(file string) string {
	return strings.ReplaceAll(strings.TrimSuffix(file, path.Ext(file)), "/", ".")
}
