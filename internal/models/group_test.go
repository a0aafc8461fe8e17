package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T) *Group {
	t.Helper()
	root := NewGroup("Root")
	personal := NewGroup("Personal")
	work := NewGroup("Work")
	sub := NewGroup("Servers")
	root.AddGroup(personal)
	root.AddGroup(work)
	work.AddGroup(sub)

	login := NewEntry()
	login.Title = "Login"
	personal.AddEntry(login)

	ssh := NewEntry()
	ssh.Title = "bastion"
	sub.AddEntry(ssh)

	return root
}

func TestFindGroupByPath(t *testing.T) {
	root := buildTree(t)

	tests := []struct {
		path string
		want string
	}{
		{"/Personal", "Personal"},
		{"Personal", "Personal"},
		{"/Work/Servers", "Servers"},
		{"/", "Root"},
	}
	for _, tt := range tests {
		g := root.FindGroupByPath(tt.path)
		require.NotNil(t, g, "path %q", tt.path)
		assert.Equal(t, tt.want, g.Name)
	}

	assert.Nil(t, root.FindGroupByPath("/Nope"))
	assert.Nil(t, root.FindGroupByPath("/Personal/Nope"))
}

func TestFindEntryByPath(t *testing.T) {
	root := buildTree(t)

	e := root.FindEntryByPath("/Personal/Login")
	require.NotNil(t, e)
	assert.Equal(t, "Login", e.Title)

	e = root.FindEntryByPath("/Work/Servers/bastion")
	require.NotNil(t, e)
	assert.Equal(t, "bastion", e.Title)

	assert.Nil(t, root.FindEntryByPath("/Personal/Missing"))
	assert.Nil(t, root.FindEntryByPath("/Missing/Login"))
	assert.Nil(t, root.FindEntryByPath(""))
}

func TestFindEntryByPath_FirstMatchOnDuplicates(t *testing.T) {
	root := NewGroup("Root")
	a := NewEntry()
	a.Title = "Login"
	a.Username = "first"
	b := NewEntry()
	b.Title = "Login"
	b.Username = "second"
	root.AddEntry(a)
	root.AddEntry(b)

	got := root.FindEntryByPath("/Login")
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Username)
}

func TestAddEntry_MovesOwnership(t *testing.T) {
	g1 := NewGroup("A")
	g2 := NewGroup("B")
	e := NewEntry()

	g1.AddEntry(e)
	require.Same(t, g1, e.Group())
	require.Len(t, g1.Entries(), 1)

	g2.AddEntry(e)
	assert.Same(t, g2, e.Group())
	assert.Empty(t, g1.Entries())
	assert.Len(t, g2.Entries(), 1)
}

func TestAddGroup_Reparents(t *testing.T) {
	p1 := NewGroup("P1")
	p2 := NewGroup("P2")
	child := NewGroup("C")

	p1.AddGroup(child)
	require.Same(t, p1, child.Parent())

	p2.AddGroup(child)
	assert.Same(t, p2, child.Parent())
	assert.Empty(t, p1.Children())
	assert.Len(t, p2.Children(), 1)
}

func TestIsEmpty(t *testing.T) {
	g := NewGroup("G")
	assert.True(t, g.IsEmpty())

	// An empty chain of children stays empty.
	child := NewGroup("C")
	g.AddGroup(child)
	assert.True(t, g.IsEmpty())

	child.AddEntry(NewEntry())
	assert.False(t, g.IsEmpty())
	assert.False(t, child.IsEmpty())
}
