package entity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleSeller    Role = "VENDEDOR"
	RoleProfessor Role = "PROFESSOR"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSeller || r == RoleProfessor
}

type TeamMember struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	Phone        string `json:"phone,omitempty"`
	PasswordHash string `json:"-"`

	// Somente para PROFESSOR
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"`
	City           string           `json:"city,omitempty"`
	ClassDate      string           `json:"class_date,omitempty"`
}

func NewTeamMember(name, email string, role Role) *TeamMember {
	return &TeamMember{
		ID:    uuid.New().String(),
		Name:  strings.TrimSpace(name),
		Email: NormalizeEmail(email),
		Role:  role,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (m *TeamMember) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}

func (m *TeamMember) IsSeller() bool {
	return m != nil && m.Role == RoleSeller
}

func (m *TeamMember) AsActor() Actor {
	if m == nil {
		return SystemActor()
	}
	return Actor{ID: m.ID, Name: m.Name}
}

// CanSee applies the visibility rule: admins see everything, everyone else only their own leads.
func (m *TeamMember) CanSee(lead *Lead) bool {
	if m == nil {
		return false
	}
	return m.IsAdmin() || lead.AssignedToID == m.ID
}
