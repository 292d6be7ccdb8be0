package catalog

import "github.com/tcat-tamu/trc-sub000/pkg/catalog"

// Adapters materialize public records from storage records. They copy every
// slice so a cached domain record never aliases repository-owned state.

func adaptWork(rec WorkRecord) (catalog.Work, error) {
	return catalog.Work{
		ID:       rec.ID,
		Type:     rec.Type,
		Titles:   copyTitles(rec.Titles),
		Authors:  copyAuthors(rec.Authors),
		Summary:  rec.Summary,
		Series:   rec.Series,
		Editions: adaptEditions(rec.Editions),
	}, nil
}

func adaptEditions(recs []EditionRecord) []catalog.Edition {
	if len(recs) == 0 {
		return nil
	}
	out := make([]catalog.Edition, 0, len(recs))
	for _, rec := range recs {
		out = append(out, catalog.Edition{
			ID:      rec.ID,
			Name:    rec.Name,
			Titles:  copyTitles(rec.Titles),
			Authors: copyAuthors(rec.Authors),
			Summary: rec.Summary,
			Series:  rec.Series,
			Volumes: adaptVolumes(rec.Volumes),
		})
	}
	return out
}

func adaptVolumes(recs []VolumeRecord) []catalog.Volume {
	if len(recs) == 0 {
		return nil
	}
	out := make([]catalog.Volume, 0, len(recs))
	for _, rec := range recs {
		out = append(out, catalog.Volume{
			ID:      rec.ID,
			Number:  rec.Number,
			Titles:  copyTitles(rec.Titles),
			Summary: rec.Summary,
		})
	}
	return out
}

func adaptRelationship(rec RelationshipRecord) (catalog.Relationship, error) {
	return catalog.Relationship{
		ID:          rec.ID,
		TypeID:      rec.TypeID,
		Source:      rec.Source,
		Target:      rec.Target,
		Description: rec.Description,
		CreatedBy:   rec.CreatedBy,
	}, nil
}

func adaptAccount(rec AccountRecord) (catalog.Account, error) {
	return catalog.Account{
		ID:          rec.ID,
		LoginID:     rec.LoginID,
		DisplayName: rec.DisplayName,
		Email:       rec.Email,
		Affiliation: rec.Affiliation,
		Active:      rec.Active,
	}, nil
}

func copyTitles(in []catalog.Title) []catalog.Title {
	if len(in) == 0 {
		return nil
	}
	out := make([]catalog.Title, len(in))
	copy(out, in)
	return out
}

func copyAuthors(in []catalog.AuthorRef) []catalog.AuthorRef {
	if len(in) == 0 {
		return nil
	}
	out := make([]catalog.AuthorRef, len(in))
	copy(out, in)
	return out
}
