// Package catalog defines the public bibliographic records served by the
// repository layer: works with nested editions and volumes, typed
// relationships between entries, and accounts. Records are immutable
// materializations; mutation goes through the edit commands in
// internal/catalog.
package catalog

// Title is one of a work's (or edition's, or volume's) titles. Type
// distinguishes canonical, short, bibliographic, and locale variants.
type Title struct {
	Type     string `json:"type,omitempty"`
	Value    string `json:"value"`
	Subtitle string `json:"subtitle,omitempty"`
	Language string `json:"language,omitempty"`
}

// AuthorRef points at a contributor. AccountID is empty for contributors
// without an account.
type AuthorRef struct {
	AccountID string `json:"accountId,omitempty"`
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
}

// Volume is the smallest catalog unit, nested under an edition.
type Volume struct {
	ID      string  `json:"id"`
	Number  string  `json:"number,omitempty"`
	Titles  []Title `json:"titles,omitempty"`
	Summary string  `json:"summary,omitempty"`
}

// Edition is one published form of a work.
type Edition struct {
	ID      string      `json:"id"`
	Name    string      `json:"name,omitempty"`
	Titles  []Title     `json:"titles,omitempty"`
	Authors []AuthorRef `json:"authors,omitempty"`
	Summary string      `json:"summary,omitempty"`
	Series  string      `json:"series,omitempty"`
	Volumes []Volume    `json:"volumes,omitempty"`
}

// Work is a bibliographic entry with its editions.
type Work struct {
	ID       string      `json:"id"`
	Type     string      `json:"type,omitempty"`
	Titles   []Title     `json:"titles,omitempty"`
	Authors  []AuthorRef `json:"authors,omitempty"`
	Summary  string      `json:"summary,omitempty"`
	Series   string      `json:"series,omitempty"`
	Editions []Edition   `json:"editions,omitempty"`
}

// Anchor identifies one end of a relationship.
type Anchor struct {
	EntryID string `json:"entryId"`
	Label   string `json:"label,omitempty"`
}

// Relationship is a typed, directed link between two catalog entries.
type Relationship struct {
	ID          string `json:"id"`
	TypeID      string `json:"typeId"`
	Source      Anchor `json:"source"`
	Target      Anchor `json:"target"`
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"createdBy,omitempty"`
}

// Account is a login identity that can author catalog changes.
type Account struct {
	ID          string `json:"id"`
	LoginID     string `json:"loginId"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
	Active      bool   `json:"active"`
}
