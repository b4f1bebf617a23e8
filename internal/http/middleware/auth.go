package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/systemmax/sst/internal/auth"
)

type contextKey string

const (
	ContextKeyMatricula contextKey = "matricula"
	ContextKeyPerfil    contextKey = "perfil"
	ContextKeyFuncao    contextKey = "funcao"
)

// Auth valida JWT de acesso e injeta claims no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			matricula, err := claims.Matricula()
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "matrícula inválida")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyMatricula, matricula)
			ctx = context.WithValue(ctx, ContextKeyPerfil, claims.Perfil)
			ctx = context.WithValue(ctx, ContextKeyFuncao, claims.Funcao)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetMatricula recupera a matrícula autenticada do contexto.
func GetMatricula(ctx context.Context) int64 {
	val, _ := ctx.Value(ContextKeyMatricula).(int64)
	return val
}

// GetPerfil recupera o perfil do contexto.
func GetPerfil(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyPerfil).(string)
	return val
}

// GetFuncao recupera a função do contexto.
func GetFuncao(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyFuncao).(string)
	return val
}

// RequirePerfis garante que o colaborador possua um dos perfis informados.
func RequirePerfis(perfis ...string) func(http.Handler) http.Handler {
	normalized := make([]string, 0, len(perfis))
	for _, perfil := range perfis {
		perfil = strings.ToLower(strings.TrimSpace(perfil))
		if perfil != "" {
			normalized = append(normalized, perfil)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			perfil := strings.ToLower(GetPerfil(r.Context()))
			for _, required := range normalized {
				if perfil == required {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeError(w, http.StatusForbidden, "FORBIDDEN", "perfil sem permissão")
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

// FormatMatricula apresenta matrícula como string para logs e chaves.
func FormatMatricula(matricula int64) string {
	return strconv.FormatInt(matricula, 10)
}
