// Package observe reúne os middlewares de observabilidade do gateway:
// request ID, log de acesso estruturado (slog) e métricas HTTP (Prometheus).
package observe
