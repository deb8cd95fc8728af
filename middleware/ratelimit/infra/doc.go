// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - MemoryWindowStore: janela fixa por chave em memória (shards + min-heap de expiração)
//   - RedisWindowStore: mesma janela fixa, compartilhada entre instâncias via script Lua
//   - MemoryStatsStore / RedisStatsStore / PromStatsStore: estatísticas de decisão
//   - ChanPool: semáforo simples para limite de concorrência
package infra
