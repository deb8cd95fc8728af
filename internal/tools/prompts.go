package tools

import (
	"fmt"
	"strings"
)

var debatePersona = map[string]string{
	"kind":     "You are a friendly, encouraging debate partner. Challenge the user's argument gently and praise what works.",
	"balanced": "You are a fair debate partner. Challenge the user's argument directly and acknowledge its strengths.",
	"strict":   "You are a rigorous debate judge. Attack weak reasoning without softening and hold the user to a high standard.",
}

// DebateSystemPrompt devolve a instrução de sistema para o estilo pedido.
func DebateSystemPrompt(style string) string {
	p, ok := debatePersona[style]
	if !ok {
		p = debatePersona["balanced"]
	}
	return p + " Always answer in the exact format requested."
}

// BuildDebatePrompt embute tema e argumento no template com as seções rotuladas
// que ParseDebate espera.
func BuildDebatePrompt(theme, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Debate theme: %s\n\n", theme)
	fmt.Fprintf(&b, "The user's argument:\n\"\"\"\n%s\n\"\"\"\n\n", message)
	b.WriteString("Respond with a counter-argument, then score the user's argument from 1 to 5 on each criterion.\n")
	b.WriteString("Use exactly this format:\n\n")
	b.WriteString("REPLY:\n<your counter-argument, at most 150 words>\n\n")
	b.WriteString("SCORES:\n")
	for _, c := range criteria {
		fmt.Fprintf(&b, "%s: <1-5>/5\n", c.label)
	}
	b.WriteString("\nFEEDBACK: <one sentence of advice, at most 200 characters>\n")
	return b.String()
}

var summaryLength = map[string]string{
	"short":  "3 to 4 sentences",
	"medium": "one or two paragraphs",
	"long":   "four to six paragraphs",
}

const SummarySystemPrompt = "You summarize documents accurately. Never invent facts that are not in the document. Always answer in the exact format requested."

// BuildSummaryPrompt pede um resumo e uma lista de pontos-chave.
func BuildSummaryPrompt(text, length string) string {
	l, ok := summaryLength[length]
	if !ok {
		l = summaryLength["medium"]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the document below in %s.\n", l)
	b.WriteString("Use exactly this format:\n\n")
	b.WriteString("SUMMARY:\n<the summary>\n\n")
	b.WriteString("KEY POINTS:\n- <point>\n- <point>\n\n")
	fmt.Fprintf(&b, "Document:\n\"\"\"\n%s\n\"\"\"\n", text)
	return b.String()
}
