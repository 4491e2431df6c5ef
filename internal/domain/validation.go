package domain

import "strings"

// ValidObjectName — имя файла или папки внутри префикса.
// Разделители запрещены: имя не должно уметь покидать префикс.
func ValidObjectName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return true
}

// ValidUsername — без пробелов и разделителей, 3..64 символа.
func ValidUsername(s string) bool {
	if len(s) < 3 || len(s) > 64 {
		return false
	}
	return !strings.ContainsAny(s, " /\\\t\n")
}
