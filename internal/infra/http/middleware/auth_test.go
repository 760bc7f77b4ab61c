package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

type stubMembers map[string]entity.TeamMember

func (s stubMembers) Member(id string) (entity.TeamMember, error) {
	m, ok := s[id]
	if !ok {
		return entity.TeamMember{}, entity.ErrMemberNotFound
	}
	return m, nil
}

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("segredo", time.Hour)
	token, exp, err := issuer.Issue(entity.TeamMember{ID: "m1", Name: "Ana", Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "m1", claims.Subject)
	assert.Equal(t, entity.RoleAdmin, claims.Role)

	_, err = NewTokenIssuer("outro", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("segredo", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := issuer.Issue(entity.TeamMember{ID: "m1"})
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate(t *testing.T) {
	issuer := NewTokenIssuer("segredo", time.Hour)
	members := stubMembers{
		"admin":  {ID: "admin", Name: "Ana", Role: entity.RoleAdmin},
		"seller": {ID: "seller", Name: "Bruno", Role: entity.RoleSeller},
	}

	var seen *entity.TeamMember
	protected := Authenticate(issuer, members)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = MemberFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	adminOnly := Authenticate(issuer, members)(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	tokenFor := func(id string) string {
		tok, _, err := issuer.Issue(entity.TeamMember{ID: id})
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name    string
		handler http.Handler
		header  string
		want    int
	}{
		{"sem token", protected, "", http.StatusUnauthorized},
		{"token malformado", protected, "Bearer abc", http.StatusUnauthorized},
		{"membro removido", protected, "Bearer " + tokenFor("ghost"), http.StatusUnauthorized},
		{"vendedor autenticado", protected, "Bearer " + tokenFor("seller"), http.StatusNoContent},
		{"vendedor em rota admin", adminOnly, "Bearer " + tokenFor("seller"), http.StatusForbidden},
		{"admin em rota admin", adminOnly, "Bearer " + tokenFor("admin"), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	require.NotNil(t, seen)
	assert.Equal(t, "seller", seen.ID)
}
