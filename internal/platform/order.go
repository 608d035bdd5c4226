package platform

import (
	"slices"

	"github.com/tordrt/ddlkit/internal/model"
)

// creationPlan is the order in which tables are created and the foreign keys
// that cannot be declared inside CREATE TABLE.
type creationPlan struct {
	tables   []*model.Table
	external map[*model.ForeignKey]bool
}

// planCreation orders tables so that every table comes after the tables it
// imports from. Tables in a reference cycle keep their model order and the
// foreign keys between them become external ALTER statements. Self references
// never force a key out of CREATE TABLE.
func planCreation(tables []*model.Table, info Info) creationPlan {
	pos := make(map[*model.Table]int, len(tables))
	for i, t := range tables {
		pos[t] = i
	}
	find := func(name string) *model.Table {
		for _, t := range tables {
			if model.NamesEqual(t.Name, name, info.CaseSensitive) {
				return t
			}
		}
		return nil
	}

	// Tarjan's algorithm pops a component only after every component it
	// depends on, which is exactly creation order.
	var (
		index    = make(map[*model.Table]int)
		low      = make(map[*model.Table]int)
		onStack  = make(map[*model.Table]bool)
		stack    []*model.Table
		next     int
		plan     = creationPlan{external: make(map[*model.ForeignKey]bool)}
		strongly func(t *model.Table)
	)
	strongly = func(t *model.Table) {
		index[t], low[t] = next, next
		next++
		stack = append(stack, t)
		onStack[t] = true

		for _, fk := range t.ForeignKeys {
			target := find(fk.ForeignTable)
			if target == nil || target == t {
				continue
			}
			if _, seen := index[target]; !seen {
				strongly(target)
				low[t] = min(low[t], low[target])
			} else if onStack[target] {
				low[t] = min(low[t], index[target])
			}
		}

		if low[t] != index[t] {
			return
		}
		var component []*model.Table
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == t {
				break
			}
		}
		slices.SortFunc(component, func(a, b *model.Table) int { return pos[a] - pos[b] })
		if len(component) > 1 {
			for _, member := range component {
				for _, fk := range member.ForeignKeys {
					if target := find(fk.ForeignTable); target != nil && target != member && slices.Contains(component, target) {
						plan.external[fk] = true
					}
				}
			}
		}
		plan.tables = append(plan.tables, component...)
	}

	for _, t := range tables {
		if _, seen := index[t]; !seen {
			strongly(t)
		}
	}

	if !info.ForeignKeysEmbedded {
		for _, t := range tables {
			for _, fk := range t.ForeignKeys {
				plan.external[fk] = true
			}
		}
	} else if !info.AlterAddForeignKeySupported {
		// Without ALTER TABLE ADD CONSTRAINT the only place for a key is
		// CREATE TABLE; such dialects accept forward references there.
		clear(plan.external)
	}
	return plan
}

// reversed returns the tables in drop order.
func (p creationPlan) reversed() []*model.Table {
	out := slices.Clone(p.tables)
	slices.Reverse(out)
	return out
}
