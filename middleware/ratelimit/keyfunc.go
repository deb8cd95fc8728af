package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

type KeyFunc func(r *http.Request) string

// UnknownKey é usado quando não há como identificar o cliente.
const UnknownKey = "unknown"

// DefaultKeyFunc extrai o identificador do cliente para a quota.
//
// Ordem: header configurado -> primeiro IP do X-Forwarded-For (se trustXFF) ->
// RemoteAddr (apenas sem trustXFF) -> "unknown".
//
// Com trustXFF o gateway está atrás de um proxy, e o RemoteAddr seria o do proxy;
// por isso a ausência de XFF cai direto em "unknown".
func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
			return UnknownKey
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return UnknownKey
	}
}

// SessionKey compõe a chave da quota de sessão: "<cliente>:<token da sessão>".
func SessionKey(clientKey, sessionID string) string {
	return clientKey + ":" + sessionID
}
