package rules

import (
	"fmt"
	"sort"
	"strings"
)

// gpUnitElements returns every GpUnit in the feed, whether encoded as a
// plain GpUnit or a ReportingUnit.
func gpUnitElements(tree *element) []*element {
	if tree == nil {
		return nil
	}
	units := tree.FindAll("GpUnit")
	return append(units, tree.FindAll("ReportingUnit")...)
}

// gpUnitGraph is the composition graph over GpUnits: node -> composing
// unit ids, as declared by ComposingGpUnitIds.
func gpUnitGraph(tree *element) map[string][]string {
	graph := make(map[string][]string)
	for _, gp := range gpUnitElements(tree) {
		id := gp.ObjectID()
		if id == "" {
			continue
		}
		graph[id] = strings.Fields(gp.ChildText("ComposingGpUnitIds"))
	}
	return graph
}

// GpUnitsHaveSingleRoot requires the GpUnit composition graph to have
// exactly one root.
type GpUnitsHaveSingleRoot struct {
	ctx *Context
}

func NewGpUnitsHaveSingleRoot(ctx *Context) *GpUnitsHaveSingleRoot {
	return &GpUnitsHaveSingleRoot{ctx: ctx}
}

func (r *GpUnitsHaveSingleRoot) Name() string { return "GpUnitsHaveSingleRoot" }

func (r *GpUnitsHaveSingleRoot) CheckTree() *Issue {
	graph := gpUnitGraph(r.ctx.Tree)
	if len(graph) == 0 {
		return nil
	}

	composed := make(map[string]struct{})
	for _, children := range graph {
		for _, child := range children {
			composed[child] = struct{}{}
		}
	}

	var roots []string
	for id := range graph {
		if _, ok := composed[id]; !ok {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)

	switch {
	case len(roots) == 0:
		return Errorf("GpUnits have no geo district root")
	case len(roots) > 1:
		return Errorf("GpUnits tree has more than one root: %s", strings.Join(roots, ", "))
	}
	return nil
}

// GpUnitsCyclesRefs rejects cycles and undefined references in the
// GpUnit composition graph.
type GpUnitsCyclesRefs struct {
	ctx *Context
}

func NewGpUnitsCyclesRefs(ctx *Context) *GpUnitsCyclesRefs {
	return &GpUnitsCyclesRefs{ctx: ctx}
}

func (r *GpUnitsCyclesRefs) Name() string { return "GpUnitsCyclesRefs" }

func (r *GpUnitsCyclesRefs) CheckTree() *Issue {
	graph := gpUnitGraph(r.ctx.Tree)
	if len(graph) == 0 {
		return nil
	}

	nodes := make([]string, 0, len(graph))
	for id := range graph {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)

	var findings []Finding
	undefined := make(map[string]struct{})
	for _, id := range nodes {
		for _, child := range graph[id] {
			if _, ok := graph[child]; !ok {
				undefined[child] = struct{}{}
			}
		}
	}
	undefinedIDs := make([]string, 0, len(undefined))
	for id := range undefined {
		undefinedIDs = append(undefinedIDs, id)
	}
	sort.Strings(undefinedIDs)
	for _, id := range undefinedIDs {
		findings = append(findings, Finding{
			Message: fmt.Sprintf("GpUnit %s is composed but never defined", id),
		})
	}

	if cycle := findCycle(graph, nodes); cycle != "" {
		findings = append(findings, Finding{
			Message: fmt.Sprintf("Cycle detected at node %s", cycle),
		})
	}

	if len(findings) == 0 {
		return nil
	}
	return Aggregate(SeverityError, "GpUnit composition graph is invalid", findings)
}

// findCycle returns the first node at which a composition cycle is
// detected, using an iterative three-color walk, or "" if the graph is
// acyclic. Deterministic given the sorted node order.
func findCycle(graph map[string][]string, nodes []string) string {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int, len(graph))

	type frame struct {
		id   string
		next int
	}
	for _, start := range nodes {
		if color[start] != white {
			continue
		}
		stack := []frame{{id: start}}
		color[start] = grey
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := graph[top.id]
			if top.next >= len(children) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch color[child] {
			case grey:
				return child
			case white:
				if _, defined := graph[child]; !defined {
					continue
				}
				color[child] = grey
				stack = append(stack, frame{id: child})
			}
		}
	}
	return ""
}

// DuplicateGpUnits reports GpUnits whose composing sets are identical,
// and duplicated GpUnit object ids.
type DuplicateGpUnits struct {
	ctx *Context
}

func NewDuplicateGpUnits(ctx *Context) *DuplicateGpUnits {
	return &DuplicateGpUnits{ctx: ctx}
}

func (r *DuplicateGpUnits) Name() string { return "DuplicateGpUnits" }

func (r *DuplicateGpUnits) CheckTree() *Issue {
	if r.ctx.Tree == nil {
		return nil
	}

	var findings []Finding

	seen := make(map[string]int)
	for _, gp := range gpUnitElements(r.ctx.Tree) {
		if id := gp.ObjectID(); id != "" {
			seen[id]++
		}
	}
	dupIDs := make([]string, 0)
	for id, n := range seen {
		if n > 1 {
			dupIDs = append(dupIDs, id)
		}
	}
	sort.Strings(dupIDs)
	for _, id := range dupIDs {
		findings = append(findings, Finding{
			Message: fmt.Sprintf("GpUnit with object_id %s is duplicated", id),
		})
	}

	// Composing set -> unit ids. Sets are keyed by their sorted members.
	byMembers := make(map[string][]string)
	for _, gp := range gpUnitElements(r.ctx.Tree) {
		members := strings.Fields(gp.ChildText("ComposingGpUnitIds"))
		if len(members) == 0 {
			continue
		}
		sort.Strings(members)
		key := strings.Join(members, " ")
		byMembers[key] = append(byMembers[key], gp.ObjectID())
	}
	keys := make([]string, 0, len(byMembers))
	for key := range byMembers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		ids := byMembers[key]
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		quoted := make([]string, len(ids))
		for i, id := range ids {
			quoted[i] = fmt.Sprintf("'%s'", id)
		}
		findings = append(findings, Finding{
			Message: fmt.Sprintf("GpUnits (%s) are duplicates", strings.Join(quoted, ", ")),
		})
	}

	if len(findings) == 0 {
		return nil
	}
	return Aggregate(SeverityError, "duplicate GpUnits found", findings)
}
