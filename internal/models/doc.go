// Package models defines the canonical password database tree that every
// import reader populates: a Database owning a root Group hierarchy, Entries
// with typed attributes, attachments and TOTP settings, and Metadata holding
// the recycle-bin reference and custom icons.
package models
