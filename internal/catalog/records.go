// Package catalog implements the bibliographic entry types over the generic
// document repository: storage records, domain adapters, per-type edit
// commands, referential validation hooks, and the service facade that wires
// them to the configured storage and version backends.
package catalog

import "github.com/tcat-tamu/trc-sub000/pkg/catalog"

// Storage records are the JSON shapes persisted in the data column. They
// never leave this package; callers see the pkg/catalog materializations.

type WorkRecord struct {
	ID       string              `json:"id"`
	Type     string              `json:"type,omitempty"`
	Titles   []catalog.Title     `json:"titles,omitempty"`
	Authors  []catalog.AuthorRef `json:"authors,omitempty"`
	Summary  string              `json:"summary,omitempty"`
	Series   string              `json:"series,omitempty"`
	Editions []EditionRecord     `json:"editions,omitempty"`
}

type EditionRecord struct {
	ID      string              `json:"id"`
	Name    string              `json:"name,omitempty"`
	Titles  []catalog.Title     `json:"titles,omitempty"`
	Authors []catalog.AuthorRef `json:"authors,omitempty"`
	Summary string              `json:"summary,omitempty"`
	Series  string              `json:"series,omitempty"`
	Volumes []VolumeRecord      `json:"volumes,omitempty"`
}

type VolumeRecord struct {
	ID      string          `json:"id"`
	Number  string          `json:"number,omitempty"`
	Titles  []catalog.Title `json:"titles,omitempty"`
	Summary string          `json:"summary,omitempty"`
}

type RelationshipRecord struct {
	ID          string         `json:"id"`
	TypeID      string         `json:"typeId"`
	Source      catalog.Anchor `json:"source"`
	Target      catalog.Anchor `json:"target"`
	Description string         `json:"description,omitempty"`
	CreatedBy   string         `json:"createdBy,omitempty"`
}

type AccountRecord struct {
	ID          string `json:"id"`
	LoginID     string `json:"loginId"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
	Active      bool   `json:"active"`
}
