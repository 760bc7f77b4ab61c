package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

type contextKey string

const memberContextKey contextKey = "member"

var ErrInvalidToken = errors.New("token inválido")

type Claims struct {
	Name string      `json:"name"`
	Role entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer assina e valida os tokens de sessão (HS256).
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(member entity.TeamMember) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := Claims{
		Name: member.Name,
		Role: member.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   member.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("erro ao assinar token: %w", err)
	}
	return signed, expiresAt, nil
}

func (t *TokenIssuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("algoritmo inesperado: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

type MemberLookup interface {
	Member(id string) (entity.TeamMember, error)
}

// Authenticate valida o Bearer token e coloca o membro no contexto. O membro é relido a
// cada request para que uma remoção da equipe corte o acesso na hora.
func Authenticate(issuer *TokenIssuer, members MemberLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token ausente")
				return
			}

			claims, err := issuer.Parse(token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token inválido ou expirado")
				return
			}

			member, err := members.Member(claims.Subject)
			if err != nil {
				log.Printf("⚠️ Token de membro inexistente: %s", claims.Subject)
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Usuário não encontrado")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithMember(r.Context(), member)))
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		member, ok := MemberFromContext(r.Context())
		if !ok || !member.IsAdmin() {
			writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "Apenas administradores")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithMember(ctx context.Context, member entity.TeamMember) context.Context {
	return context.WithValue(ctx, memberContextKey, &member)
}

func MemberFromContext(ctx context.Context) (*entity.TeamMember, bool) {
	member, ok := ctx.Value(memberContextKey).(*entity.TeamMember)
	return member, ok && member != nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
