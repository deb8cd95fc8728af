package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

type Key string

// Quota descreve o limite de uma rota: no máximo MaxRequests dentro de uma
// janela fixa de duração Window. Name identifica a quota em logs/estatísticas
// e separa chaves iguais usadas por quotas diferentes.
type Quota struct {
	Name        string
	MaxRequests int
	Window      time.Duration
}

// WindowState é o resultado bruto de uma verificação na janela fixa.
//
// Count é o contador após a verificação (não é incrementado quando negado).
// ResetAt é o instante em que a janela expira.
type WindowState struct {
	Allowed bool
	Count   int
	ResetAt time.Time
}

// WindowStore mantém um contador por chave com janela fixa.
//
// Contrato:
//   - chave ausente ou expirada (now >= ResetAt): nova janela com Count=1
//   - Count >= MaxRequests: negado, nada é alterado
//   - caso contrário: Count++ e permitido
//
// Implementações devem ser seguras para uso concorrente.
type WindowStore interface {
	Hit(ctx context.Context, key Key, q Quota) (WindowState, error)
}

type Decision struct {
	Allowed bool
	// Remaining é quantas requisições ainda cabem na janela atual.
	Remaining int
	// ResetIn é o tempo até a janela reiniciar.
	ResetIn time.Duration
	// ResetInMinutes é ResetIn arredondado para cima em minutos (>= 1 quando negado).
	ResetInMinutes int
}
