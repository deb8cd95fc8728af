// Package domain define contratos e tipos de domínio para quotas por janela fixa,
// estatísticas de decisão e limite de concorrência.
//
// Este pacote não depende de net/http nem de implementações concretas.
package domain
