package ratelimit

import "strconv"

// formatInt evita puxar fmt só para escrever números em headers.
func formatInt(v int) string { return strconv.Itoa(v) }
