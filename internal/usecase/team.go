package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/xavierca1/imersao-crm/internal/entity"
	"golang.org/x/crypto/bcrypt"
)

func (m *LeadManager) Team() []entity.TeamMember {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.TeamMember(nil), m.team...)
}

func (m *LeadManager) Sellers() []entity.TeamMember {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sellers()
}

func (m *LeadManager) Member(id string) (entity.TeamMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mb := m.member(id)
	if mb == nil {
		return entity.TeamMember{}, domainError("MEMBER_NOT_FOUND", entity.ErrMemberNotFound)
	}
	return *mb, nil
}

func (m *LeadManager) AddTeamMember(ctx context.Context, in AddTeamMemberInput) (entity.TeamMember, error) {
	if err := validationFailure(Validate(in)); err != nil {
		return entity.TeamMember{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return entity.TeamMember{}, &TechnicalError{Code: "HASH_FAILED", Message: "erro ao processar senha", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email := entity.NormalizeEmail(in.Email)
	if m.memberByEmail(email) != nil {
		return entity.TeamMember{}, domainError("EMAIL_TAKEN", entity.ErrEmailTaken)
	}

	member := entity.NewTeamMember(in.Name, email, in.Role)
	member.Phone = strings.TrimSpace(in.Phone)
	member.PasswordHash = string(hash)
	if in.Role == entity.RoleProfessor {
		member.CommissionRate = in.CommissionRate
		member.City = strings.TrimSpace(in.City)
		member.ClassDate = strings.TrimSpace(in.ClassDate)
	}

	m.team = append(m.team, *member)
	saved := *member
	m.writer.Enqueue(Operation{
		Name: "team.insert",
		Fn:   func(ctx context.Context) error { return m.repos.Team.Insert(ctx, &saved) },
	})
	m.mirror(ctx, cacheKeyTeam)

	return *member, nil
}

// RemoveTeamMember deletes the member. Their leads keep the dangling reference until reassigned.
func (m *LeadManager) RemoveTeamMember(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i := range m.team {
		if m.team[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domainError("MEMBER_NOT_FOUND", entity.ErrMemberNotFound)
	}

	m.team = append(m.team[:idx], m.team[idx+1:]...)
	m.writer.Enqueue(Operation{
		Name: "team.delete",
		Fn:   func(ctx context.Context) error { return m.repos.Team.Delete(ctx, id) },
	})
	m.mirror(ctx, cacheKeyTeam)
	return nil
}

// Authenticate matches a normalized e-mail and a bcrypt password.
func (m *LeadManager) Authenticate(email, password string) (entity.TeamMember, error) {
	m.mu.Lock()
	mb := m.memberByEmail(entity.NormalizeEmail(email))
	var member entity.TeamMember
	if mb != nil {
		member = *mb
	}
	m.mu.Unlock()

	if mb == nil || member.PasswordHash == "" {
		return entity.TeamMember{}, domainError("INVALID_CREDENTIALS", entity.ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return entity.TeamMember{}, domainError("INVALID_CREDENTIALS", entity.ErrInvalidCredentials)
	}
	return member, nil
}

func (m *LeadManager) memberByEmail(email string) *entity.TeamMember {
	for i := range m.team {
		if m.team[i].Email == email {
			return &m.team[i]
		}
	}
	return nil
}

// seedAdmin creates the configured administrator when the team has none. Caller holds mu.
func (m *LeadManager) seedAdmin() error {
	if m.admin == nil {
		return nil
	}
	for i := range m.team {
		if m.team[i].IsAdmin() {
			return nil
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(m.admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	name := m.admin.Name
	if name == "" {
		name = "Administrador"
	}
	admin := entity.NewTeamMember(name, m.admin.Email, entity.RoleAdmin)
	admin.PasswordHash = string(hash)

	m.team = append(m.team, *admin)
	saved := *admin
	m.writer.Enqueue(Operation{
		Name: "team.insert",
		Fn:   func(ctx context.Context) error { return m.repos.Team.Insert(ctx, &saved) },
	})
	log.Printf("✅ Administrador inicial criado: %s", admin.Email)
	return nil
}
