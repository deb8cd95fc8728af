// Package ratelimit fornece a cola HTTP (net/http) para quotas por janela fixa e
// limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela fixa em memória/Redis, semáforo, stats)
//   - ratelimit (este pacote): extração de chave + Limiter usado pelos handlers + headers
//
// Fluxo em um endpoint do gateway:
//
//  1. O handler valida a entrada (request inválida não consome quota)
//  2. Extrai a chave do cliente (header/XFF/"unknown")
//  3. Limiter.Check consome a quota e devolve a decisão
//  4. Se bloqueado, o handler responde 429 com Retry-After
//  5. Se permitido, segue para a chamada ao LLM
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam as quotas,
// como QUOTA_DEBATE_MAX_REQUESTS, QUOTA_DEBATE_WINDOW, QUOTA_BACKEND e CONCURRENCY_MAX.
package ratelimit
