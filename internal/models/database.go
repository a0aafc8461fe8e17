package models

import "github.com/google/uuid"

// RecycleBinName is the display name of the lazily created recycle bin group.
const RecycleBinName = "Recycle Bin"

// Metadata carries database-level bookkeeping. RecycleBin is an identity
// reference to a group owned by the tree, nil until the first soft-deleted
// item routes there.
type Metadata struct {
	RecycleBin  *Group
	CustomIcons map[uuid.UUID][]byte
}

// Database is the root of one converted export. A reader builds a fresh
// Database per Convert call and holds no reference to it afterwards.
type Database struct {
	root *Group
	meta *Metadata
}

// NewDatabase returns an empty database with an unnamed root group.
func NewDatabase() *Database {
	return &Database{
		root: NewGroup("Root"),
		meta: &Metadata{CustomIcons: make(map[uuid.UUID][]byte)},
	}
}

// RootGroup returns the root of the group tree.
func (d *Database) RootGroup() *Group { return d.root }

// Metadata returns the database metadata.
func (d *Database) Metadata() *Metadata { return d.meta }

// RecycleBin returns the recycle bin group, or nil if nothing was ever
// soft-deleted.
func (d *Database) RecycleBin() *Group { return d.meta.RecycleBin }

// EnsureRecycleBin returns the recycle bin group, creating it under the root
// and recording it in Metadata on first use.
func (d *Database) EnsureRecycleBin() *Group {
	if d.meta.RecycleBin == nil {
		bin := NewGroup(RecycleBinName)
		d.root.AddGroup(bin)
		d.meta.RecycleBin = bin
	}
	return d.meta.RecycleBin
}

// AddCustomIcon registers raw icon data and returns its generated identifier.
func (d *Database) AddCustomIcon(data []byte) uuid.UUID {
	id := uuid.New()
	d.meta.CustomIcons[id] = data
	return id
}
