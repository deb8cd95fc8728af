// Package parse extrai campos de texto semi-estruturado devolvido pelo LLM.
//
// Cada extrator devolve (valor, ok) para que a falha seja observável; a troca
// pelo valor padrão é um passo separado (OrInt/OrString).
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MinScore = 1
	MaxScore = 5
)

// Score procura "<label>: N/5" (sem diferenciar maiúsculas) e devolve N se
// estiver em [MinScore, MaxScore].
func Score(text, label string) (int, bool) {
	re := regexp.MustCompile(`(?im)^\W*` + regexp.QuoteMeta(label) + `\W*:\s*(\d+)\s*/\s*5\b`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < MinScore || n > MaxScore {
		return 0, false
	}
	return n, true
}

// Line devolve o texto após "<marker>:" até o fim da linha.
func Line(text, marker string) (string, bool) {
	re := regexp.MustCompile(`(?im)^\W*` + regexp.QuoteMeta(marker) + `\W*:[ \t]*(.+)$`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	return v, v != ""
}

// Section devolve o texto entre "<start>:" e o primeiro dos marcadores de fim
// (ou o fim do texto).
func Section(text, start string, ends ...string) (string, bool) {
	re := regexp.MustCompile(`(?im)^\W*` + regexp.QuoteMeta(start) + `\W*:[ \t]*`)
	loc := re.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	if cut := firstMarker(rest, ends); cut >= 0 {
		rest = rest[:cut]
	}
	v := strings.TrimSpace(rest)
	return v, v != ""
}

// Before devolve o texto antes do primeiro marcador encontrado.
func Before(text string, markers ...string) (string, bool) {
	v := text
	if cut := firstMarker(text, markers); cut >= 0 {
		v = text[:cut]
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func firstMarker(text string, markers []string) int {
	cut := -1
	for _, m := range markers {
		re := regexp.MustCompile(`(?im)^\W*` + regexp.QuoteMeta(m) + `\W*:`)
		if loc := re.FindStringIndex(text); loc != nil && (cut < 0 || loc[0] < cut) {
			cut = loc[0]
		}
	}
	return cut
}

var bulletRE = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.+)$`)

// Bullets devolve os itens de lista ("- x", "* x", "1. x") do texto.
func Bullets(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if m := bulletRE.FindStringSubmatch(line); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// Truncate corta s em no máximo max caracteres (runes).
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}

func OrInt(v int, ok bool, def int) int {
	if !ok {
		return def
	}
	return v
}

func OrString(v string, ok bool, def string) string {
	if !ok {
		return def
	}
	return v
}
