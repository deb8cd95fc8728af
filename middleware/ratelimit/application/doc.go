// Package application contém os casos de uso para quota por janela fixa e
// limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: QuotaService.Decide(ctx, key) retorna uma Decision (allow/deny + remaining + reset).
package application
