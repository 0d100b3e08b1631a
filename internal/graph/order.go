package graph

import "github.com/evanw/bundlecore/internal/moduleid"

// action distinguishes the two stack frames the ordering sweep pushes for
// a module: Enter is processed before its dependencies, Exit after.
type action int

const (
	actionEnter action = iota
	actionExit
)

type stackItem struct {
	id     moduleid.ID
	action action
}

// Order runs the two depth-first sweeps and assigns ExecOrder to
// every reachable normal module. It returns the modules in that order.
//
// Pass 1 walks static dependencies only, seeded by the reversed entry
// list, using an explicit stack so a module's order is fixed on Exit
// rather than requiring a cycle-rejecting topological sort: on a cycle the
// first module entered keeps the lowest order, matching other module
// systems' execution semantics. Pass 2 re-runs the same sweep seeded by
// every dynamic-import target collected along the way, skipping modules
// pass 1 already finished.
func (g *Graph) Order(entries []moduleid.ID) []moduleid.ID {
	visited := make(map[moduleid.ID]bool)
	var dynamicSide []moduleid.ID
	var ordered []moduleid.ID
	counter := 0

	sweep := func(seeds []moduleid.ID) {
		stack := make([]stackItem, 0, len(seeds))
		for i := len(seeds) - 1; i >= 0; i-- {
			stack = append(stack, stackItem{seeds[i], actionEnter})
		}
		for len(stack) > 0 {
			item := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if item.action == actionExit {
				if m, ok := g.Normal(item.id); ok {
					m.ExecOrder = counter
					counter++
					ordered = append(ordered, item.id)
				}
				continue
			}

			if visited[item.id] {
				continue
			}
			visited[item.id] = true

			if g.IsExternal(item.id) {
				continue
			}
			m, ok := g.Normal(item.id)
			if !ok {
				// Dependency never made it into the graph (e.g. a failed
				// resolve the loader already reported); nothing to order.
				continue
			}

			stack = append(stack, stackItem{item.id, actionExit})
			deps := m.StaticDepOrder
			for i := len(deps) - 1; i >= 0; i-- {
				if !visited[deps[i]] {
					stack = append(stack, stackItem{deps[i], actionEnter})
				}
			}
			dynamicSide = append(dynamicSide, m.DynamicDepOrder...)
		}
	}

	sweep(entries)
	sweep(dynamicSide)

	return ordered
}
