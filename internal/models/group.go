package models

import (
	"strings"

	"github.com/google/uuid"
)

// Group is one node of the database tree. It owns its child groups and
// entries; an entry belongs to exactly one group at a time.
type Group struct {
	Name     string
	IconUUID uuid.UUID

	children []*Group
	entries  []*Entry
	parent   *Group
}

// NewGroup returns an empty group with the given display name.
func NewGroup(name string) *Group {
	return &Group{Name: name}
}

// Parent returns the owning group, or nil for the root.
func (g *Group) Parent() *Group { return g.parent }

// Children returns the child groups in insertion order.
func (g *Group) Children() []*Group { return g.children }

// Entries returns the owned entries in insertion order.
func (g *Group) Entries() []*Entry { return g.entries }

// AddGroup appends child to g, detaching it from a previous parent if any.
func (g *Group) AddGroup(child *Group) {
	if child.parent != nil {
		child.parent.RemoveGroup(child)
	}
	child.parent = g
	g.children = append(g.children, child)
}

// AddEntry appends e to g. If e already belongs to a group it is moved,
// preserving exclusive ownership.
func (g *Group) AddEntry(e *Entry) {
	if e.group != nil {
		e.group.removeEntry(e)
	}
	e.group = g
	g.entries = append(g.entries, e)
}

// RemoveGroup detaches child from g. Entries owned by the subtree keep
// their ownership; the subtree simply leaves this tree.
func (g *Group) RemoveGroup(child *Group) {
	for i, c := range g.children {
		if c == child {
			g.children = append(g.children[:i], g.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

func (g *Group) removeEntry(e *Entry) {
	for i, x := range g.entries {
		if x == e {
			g.entries = append(g.entries[:i], g.entries[i+1:]...)
			e.group = nil
			return
		}
	}
}

// IsEmpty reports whether the group owns no entries and no non-empty
// descendant groups.
func (g *Group) IsEmpty() bool {
	if len(g.entries) > 0 {
		return false
	}
	for _, c := range g.children {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// FindGroupByName returns the first direct child with the given name.
func (g *Group) FindGroupByName(name string) *Group {
	for _, c := range g.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindEntryByPath resolves a '/'-delimited path where the last segment is an
// entry title and every preceding segment a group name. A leading slash
// anchors the path at g itself. Lookup is first-match; duplicate names are
// legal in the tree.
func (g *Group) FindEntryByPath(path string) *Entry {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil
	}
	cur := g
	for _, name := range segs[:len(segs)-1] {
		if cur = cur.FindGroupByName(name); cur == nil {
			return nil
		}
	}
	title := segs[len(segs)-1]
	for _, e := range cur.entries {
		if e.Title == title {
			return e
		}
	}
	return nil
}

// FindGroupByPath resolves a '/'-delimited path of group names below g.
func (g *Group) FindGroupByPath(path string) *Group {
	cur := g
	for _, name := range splitPath(path) {
		if cur = cur.FindGroupByName(name); cur == nil {
			return nil
		}
	}
	return cur
}

func splitPath(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
