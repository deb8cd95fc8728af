// Package llm é o cliente do serviço externo de geração de texto.
//
// Uma chamada por request, síncrona, sem streaming e sem retry: falhas voltam
// para o chamador na primeira tentativa, tipadas para classificação.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Generator abstrai o serviço de geração de texto.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Response struct {
	Text  string
	Model string
	Usage Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

var (
	// ErrNotConfigured indica ausência de API key.
	ErrNotConfigured = errors.New("llm: api key not configured")
	// ErrThrottled indica que o limite local de chamadas ao upstream foi atingido.
	ErrThrottled = errors.New("llm: outbound rate limit reached")
	// ErrEmptyResponse indica resposta sem nenhum bloco de texto.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// UpstreamError é uma resposta não-2xx do upstream.
//
// Body guarda o corpo cru apenas para log; nunca deve ir para o cliente.
type UpstreamError struct {
	StatusCode int
	Type       string
	Message    string
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("llm: upstream status %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("llm: upstream status %d", e.StatusCode)
}

// StatusOverloaded é o status usado pelo upstream quando está sobrecarregado.
const StatusOverloaded = 529

// Overloaded informa se o erro indica sobrecarga do upstream.
func (e *UpstreamError) Overloaded() bool {
	return e.StatusCode == StatusOverloaded || e.Type == "overloaded_error"
}
