package score

import (
	"sort"
	"strings"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/user"
)

// ScopeFilter narrows the entities offered for comparison.
type ScopeFilter struct {
	Search string `query:"search"`
	// Company narrows employee mode to a single company before search applies.
	Company string `query:"company"`
}

// ResolveEntities filters the global company/employee lists down to those
// visible to the actor and matching the active filters. Group actors only see
// their managed-company set (exact membership, not fuzzy). Pure; the inputs
// are never mutated.
func ResolveEntities(actor user.User, companies, employees []user.User, mode string, filter ScopeFilter) []Entity {
	var managed map[string]bool
	if actor.IsGroup() {
		managed = make(map[string]bool, len(actor.ManagedCompanies))
		for _, name := range actor.ManagedCompanies {
			managed[name] = true
		}
	}
	inScope := func(companyName string) bool {
		return managed == nil || managed[companyName]
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var entities []Entity
	if mode == ModeEmployees {
		for _, emp := range employees {
			if !inScope(emp.CompanyName) {
				continue
			}
			if filter.Company != "" && emp.CompanyName != filter.Company {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(emp.Name), search) &&
				!strings.Contains(strings.ToLower(emp.CompanyName), search) {
				continue
			}
			entities = append(entities, Entity{
				ID:          emp.ID,
				Name:        emp.Name,
				CompanyName: emp.CompanyName,
				DisplayName: emp.DisplayName(),
				PhotoURL:    emp.PhotoURL,
			})
		}
		coll := newNameCollator()
		sort.SliceStable(entities, func(i, j int) bool {
			return coll.CompareString(entities[i].Name, entities[j].Name) < 0
		})
		return entities
	}

	for _, comp := range companies {
		if !inScope(comp.CompanyName) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(comp.CompanyName), search) {
			continue
		}
		entities = append(entities, Entity{
			ID:          comp.ID,
			Name:        comp.Name,
			CompanyName: comp.CompanyName,
			DisplayName: comp.CompanyName,
			PhotoURL:    comp.PhotoURL,
		})
	}
	coll := newNameCollator()
	sort.SliceStable(entities, func(i, j int) bool {
		return coll.CompareString(entities[i].CompanyName, entities[j].CompanyName) < 0
	})
	return entities
}
