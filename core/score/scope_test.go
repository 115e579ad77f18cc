package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/user"
)

func TestResolveEntities(t *testing.T) {
	companies := []user.User{
		{ID: "c1", Name: "Maria", Role: user.RoleCompany, CompanyName: "Zebra Motors", PhotoURL: "zebra.png"},
		{ID: "c2", Name: "João", Role: user.RoleCompany, CompanyName: "Auto Center Silva"},
		{ID: "c3", Name: "Ana", Role: user.RoleCompany, CompanyName: "Borracharia União"},
	}
	employees := []user.User{
		{ID: "e1", Name: "Pedro", Role: user.RoleEmployee, CompanyName: "Auto Center Silva"},
		{ID: "e2", Name: "Alice", Role: user.RoleEmployee, CompanyName: "Zebra Motors"},
		{ID: "e3", Name: "Bruno", Role: user.RoleEmployee, CompanyName: "Borracharia União"},
	}
	groupActor := user.User{
		ID: "g1", Role: user.RoleGroup,
		ManagedCompanies: []string{"Auto Center Silva", "Zebra Motors"},
	}
	adminActor := user.User{ID: "a1", Role: user.RoleAdmin}

	names := func(entities []Entity) []string {
		out := make([]string, 0, len(entities))
		for _, e := range entities {
			out = append(out, e.DisplayName)
		}
		return out
	}

	t.Run("group actor sees only managed companies, sorted", func(t *testing.T) {
		got := ResolveEntities(groupActor, companies, employees, ModeCompanies, ScopeFilter{})
		assert.Equal(t, []string{"Auto Center Silva", "Zebra Motors"}, names(got))
	})

	t.Run("admin actor is unrestricted", func(t *testing.T) {
		got := ResolveEntities(adminActor, companies, employees, ModeCompanies, ScopeFilter{})
		assert.Equal(t, []string{"Auto Center Silva", "Borracharia União", "Zebra Motors"}, names(got))
	})

	t.Run("company search is case-insensitive substring", func(t *testing.T) {
		got := ResolveEntities(adminActor, companies, employees, ModeCompanies, ScopeFilter{Search: "auto"})
		assert.Equal(t, []string{"Auto Center Silva"}, names(got))
	})

	t.Run("employee mode respects managed set and sorts by name", func(t *testing.T) {
		got := ResolveEntities(groupActor, companies, employees, ModeEmployees, ScopeFilter{})
		assert.Equal(t, []string{"Alice (Zebra Motors)", "Pedro (Auto Center Silva)"}, names(got))
	})

	t.Run("employee search also matches company name", func(t *testing.T) {
		got := ResolveEntities(groupActor, companies, employees, ModeEmployees, ScopeFilter{Search: "zebra"})
		assert.Equal(t, []string{"Alice (Zebra Motors)"}, names(got))
	})

	t.Run("employee company filter is exact match", func(t *testing.T) {
		got := ResolveEntities(groupActor, companies, employees, ModeEmployees, ScopeFilter{Company: "Auto Center Silva"})
		assert.Equal(t, []string{"Pedro (Auto Center Silva)"}, names(got))
	})

	t.Run("company filter applies before search", func(t *testing.T) {
		got := ResolveEntities(groupActor, companies, employees, ModeEmployees, ScopeFilter{Company: "Auto Center Silva", Search: "zebra"})
		assert.Empty(t, got)
	})

	t.Run("accented names sort with their base letter", func(t *testing.T) {
		withAccents := append([]user.User{
			{ID: "c4", Name: "Rita", Role: user.RoleCompany, CompanyName: "Água Limpa"},
		}, companies...)
		got := ResolveEntities(adminActor, withAccents, nil, ModeCompanies, ScopeFilter{})
		assert.Equal(t, []string{"Água Limpa", "Auto Center Silva", "Borracharia União", "Zebra Motors"}, names(got))
	})

	t.Run("inputs are not mutated", func(t *testing.T) {
		_ = ResolveEntities(groupActor, companies, employees, ModeCompanies, ScopeFilter{})
		assert.Equal(t, "Zebra Motors", companies[0].CompanyName)
		assert.Equal(t, "Pedro", employees[0].Name)
	})
}
