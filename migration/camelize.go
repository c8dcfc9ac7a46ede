package migration

import (
	"strings"
	"unicode"
)

// Camelize turns an underscored identifier into its class name form,
// create_users becomes CreateUsers
func Camelize(s string) string {
	var b strings.Builder

	for _, word := range strings.Split(s, "_") {
		b.WriteString(ucFirst(word))
	}

	return b.String()
}

func ucFirst(s string) string {
	r := []rune(s)

	if len(r) == 0 {
		return ""
	}

	f := string(unicode.ToUpper(r[0]))

	return f + string(r[1:])
}
