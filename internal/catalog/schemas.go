package catalog

import "github.com/tcat-tamu/trc-sub000/pkg/repo"

// Storage schemas for the three entry types. All three keep a removed
// column so deletes are soft by default, plus created/modified markers.

func workSchema() (*repo.Schema, error) {
	return repo.NewSchemaBuilder("work", "works").
		IDColumn("work_id").
		DataColumn("work").
		RemovedColumn("removed").
		CreatedColumn("date_created").
		ModifiedColumn("date_modified").
		Build()
}

func relationshipSchema() (*repo.Schema, error) {
	return repo.NewSchemaBuilder("relationship", "relationships").
		IDColumn("relationship_id").
		DataColumn("relationship").
		RemovedColumn("removed").
		CreatedColumn("date_created").
		ModifiedColumn("date_modified").
		Build()
}

func accountSchema() (*repo.Schema, error) {
	return repo.NewSchemaBuilder("account", "accounts").
		IDColumn("account_id").
		DataColumn("account").
		RemovedColumn("removed").
		CreatedColumn("date_created").
		ModifiedColumn("date_modified").
		Build()
}
