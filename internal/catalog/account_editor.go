package catalog

import (
	"context"

	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

// AccountEditor buffers mutations of one account entry.
type AccountEditor struct {
	cmd *repo.Command[AccountRecord]
}

func newAccountEditor(cmd *repo.Command[AccountRecord]) *AccountEditor {
	id := cmd.ID()
	cmd.Add("set account id", func(a *AccountRecord) error {
		a.ID = id
		return nil
	})
	return &AccountEditor{cmd: cmd}
}

// ID returns the account's entry id.
func (e *AccountEditor) ID() string { return e.cmd.ID() }

// SetLoginID sets the login identifier.
func (e *AccountEditor) SetLoginID(loginID string) {
	e.cmd.Add("set login id", func(a *AccountRecord) error {
		a.LoginID = loginID
		return nil
	})
}

// SetDisplayName sets the display name.
func (e *AccountEditor) SetDisplayName(name string) {
	e.cmd.Add("set display name", func(a *AccountRecord) error {
		a.DisplayName = name
		return nil
	})
}

// SetEmail sets the contact email.
func (e *AccountEditor) SetEmail(email string) {
	e.cmd.Add("set email", func(a *AccountRecord) error {
		a.Email = email
		return nil
	})
}

// SetAffiliation sets the institutional affiliation.
func (e *AccountEditor) SetAffiliation(affiliation string) {
	e.cmd.Add("set affiliation", func(a *AccountRecord) error {
		a.Affiliation = affiliation
		return nil
	})
}

// SetActive enables or disables the account.
func (e *AccountEditor) SetActive(active bool) {
	e.cmd.Add("set active", func(a *AccountRecord) error {
		a.Active = active
		return nil
	})
}

// Execute submits the buffered mutations to the commit pipeline.
func (e *AccountEditor) Execute(ctx context.Context) *repo.Commit[AccountRecord] {
	return e.cmd.Execute(ctx)
}
