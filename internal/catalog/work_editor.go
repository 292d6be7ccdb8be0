package catalog

import (
	"context"
	"fmt"

	"github.com/tcat-tamu/trc-sub000/pkg/catalog"
	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

// WorkEditor buffers field-level mutations of one work. Nothing touches
// storage until Execute; child editors share the same buffered command, so
// one Execute commits the whole tree of changes atomically.
type WorkEditor struct {
	cmd *repo.Command[WorkRecord]
	ids repo.IDSource
}

func newWorkEditor(cmd *repo.Command[WorkRecord], ids repo.IDSource) *WorkEditor {
	id := cmd.ID()
	cmd.Add("set work id", func(w *WorkRecord) error {
		w.ID = id
		return nil
	})
	return &WorkEditor{cmd: cmd, ids: ids}
}

// ID returns the work's entry id, available before Execute for creates.
func (e *WorkEditor) ID() string { return e.cmd.ID() }

// SetType sets the bibliographic type of the work.
func (e *WorkEditor) SetType(t string) {
	e.cmd.Add("set type", func(w *WorkRecord) error {
		w.Type = t
		return nil
	})
}

// SetTitles replaces the work's title list.
func (e *WorkEditor) SetTitles(titles []catalog.Title) {
	e.cmd.Add("set titles", func(w *WorkRecord) error {
		w.Titles = copyTitles(titles)
		return nil
	})
}

// SetAuthors replaces the work's contributor list.
func (e *WorkEditor) SetAuthors(authors []catalog.AuthorRef) {
	e.cmd.Add("set authors", func(w *WorkRecord) error {
		w.Authors = copyAuthors(authors)
		return nil
	})
}

// SetSummary sets the work's summary.
func (e *WorkEditor) SetSummary(summary string) {
	e.cmd.Add("set summary", func(w *WorkRecord) error {
		w.Summary = summary
		return nil
	})
}

// SetSeries sets the series the work belongs to.
func (e *WorkEditor) SetSeries(series string) {
	e.cmd.Add("set series", func(w *WorkRecord) error {
		w.Series = series
		return nil
	})
}

// CreateEdition appends a new edition with a server-assigned id and returns
// an editor scoped to it.
func (e *WorkEditor) CreateEdition() *EditionEditor {
	id := e.ids.Next()
	e.cmd.Add(fmt.Sprintf("create edition %s", id), func(w *WorkRecord) error {
		w.Editions = append(w.Editions, EditionRecord{ID: id})
		return nil
	})
	return &EditionEditor{cmd: e.cmd, ids: e.ids, editionID: id}
}

// EditEdition returns an editor for the edition with the given id. If the
// work has no such edition, Execute fails with NotFound.
func (e *WorkEditor) EditEdition(id string) *EditionEditor {
	return &EditionEditor{cmd: e.cmd, ids: e.ids, editionID: id}
}

// RemoveEdition deletes the edition with the given id; Execute fails with
// NotFound if it is absent.
func (e *WorkEditor) RemoveEdition(id string) {
	e.cmd.Add(fmt.Sprintf("remove edition %s", id), func(w *WorkRecord) error {
		for i := range w.Editions {
			if w.Editions[i].ID == id {
				w.Editions = append(w.Editions[:i], w.Editions[i+1:]...)
				return nil
			}
		}
		return repo.NotFoundError{ID: id}
	})
}

// SetEditions replaces the edition list wholesale. Original editions whose
// ids are not listed are deleted; listed ids are updated or created in
// listed order; entries without an id are creations and receive
// server-assigned ids. Nested volumes follow the same rule.
func (e *WorkEditor) SetEditions(editions []catalog.Edition) {
	ids := e.ids
	e.cmd.Add("replace editions", func(w *WorkRecord) error {
		next := make([]EditionRecord, 0, len(editions))
		for _, ed := range editions {
			next = append(next, editionRecordFrom(ed, ids))
		}
		if len(next) == 0 {
			next = nil
		}
		w.Editions = next
		return nil
	})
}

// Execute submits the buffered mutations to the commit pipeline.
func (e *WorkEditor) Execute(ctx context.Context) *repo.Commit[WorkRecord] {
	return e.cmd.Execute(ctx)
}

// EditionEditor buffers mutations of one edition inside a work editor.
type EditionEditor struct {
	cmd       *repo.Command[WorkRecord]
	ids       repo.IDSource
	editionID string
}

// ID returns the edition's id.
func (e *EditionEditor) ID() string { return e.editionID }

// mutate buffers a mutation that resolves the edition by id at apply time.
func (e *EditionEditor) mutate(label string, fn func(*EditionRecord) error) {
	id := e.editionID
	e.cmd.Add(fmt.Sprintf("%s (edition %s)", label, id), func(w *WorkRecord) error {
		for i := range w.Editions {
			if w.Editions[i].ID == id {
				return fn(&w.Editions[i])
			}
		}
		return repo.NotFoundError{ID: id}
	})
}

// SetName sets the edition's display name.
func (e *EditionEditor) SetName(name string) {
	e.mutate("set name", func(ed *EditionRecord) error {
		ed.Name = name
		return nil
	})
}

// SetTitles replaces the edition's title list.
func (e *EditionEditor) SetTitles(titles []catalog.Title) {
	e.mutate("set titles", func(ed *EditionRecord) error {
		ed.Titles = copyTitles(titles)
		return nil
	})
}

// SetAuthors replaces the edition's contributor list.
func (e *EditionEditor) SetAuthors(authors []catalog.AuthorRef) {
	e.mutate("set authors", func(ed *EditionRecord) error {
		ed.Authors = copyAuthors(authors)
		return nil
	})
}

// SetSummary sets the edition's summary.
func (e *EditionEditor) SetSummary(summary string) {
	e.mutate("set summary", func(ed *EditionRecord) error {
		ed.Summary = summary
		return nil
	})
}

// SetSeries sets the edition's series.
func (e *EditionEditor) SetSeries(series string) {
	e.mutate("set series", func(ed *EditionRecord) error {
		ed.Series = series
		return nil
	})
}

// CreateVolume appends a new volume with a server-assigned id and returns
// an editor scoped to it.
func (e *EditionEditor) CreateVolume() *VolumeEditor {
	id := e.ids.Next()
	e.mutate(fmt.Sprintf("create volume %s", id), func(ed *EditionRecord) error {
		ed.Volumes = append(ed.Volumes, VolumeRecord{ID: id})
		return nil
	})
	return &VolumeEditor{edition: e, volumeID: id}
}

// EditVolume returns an editor for the volume with the given id; Execute
// fails with NotFound if the edition has no such volume.
func (e *EditionEditor) EditVolume(id string) *VolumeEditor {
	return &VolumeEditor{edition: e, volumeID: id}
}

// RemoveVolume deletes the volume with the given id; Execute fails with
// NotFound if it is absent.
func (e *EditionEditor) RemoveVolume(id string) {
	e.mutate(fmt.Sprintf("remove volume %s", id), func(ed *EditionRecord) error {
		for i := range ed.Volumes {
			if ed.Volumes[i].ID == id {
				ed.Volumes = append(ed.Volumes[:i], ed.Volumes[i+1:]...)
				return nil
			}
		}
		return repo.NotFoundError{ID: id}
	})
}

// SetVolumes replaces the edition's volume list wholesale, under the same
// replacement rule as WorkEditor.SetEditions.
func (e *EditionEditor) SetVolumes(volumes []catalog.Volume) {
	ids := e.ids
	e.mutate("replace volumes", func(ed *EditionRecord) error {
		next := make([]VolumeRecord, 0, len(volumes))
		for _, v := range volumes {
			next = append(next, volumeRecordFrom(v, ids))
		}
		if len(next) == 0 {
			next = nil
		}
		ed.Volumes = next
		return nil
	})
}

// VolumeEditor buffers mutations of one volume inside an edition editor.
type VolumeEditor struct {
	edition  *EditionEditor
	volumeID string
}

// ID returns the volume's id.
func (e *VolumeEditor) ID() string { return e.volumeID }

func (e *VolumeEditor) mutate(label string, fn func(*VolumeRecord) error) {
	id := e.volumeID
	e.edition.mutate(fmt.Sprintf("%s (volume %s)", label, id), func(ed *EditionRecord) error {
		for i := range ed.Volumes {
			if ed.Volumes[i].ID == id {
				return fn(&ed.Volumes[i])
			}
		}
		return repo.NotFoundError{ID: id}
	})
}

// SetNumber sets the volume's number or label.
func (e *VolumeEditor) SetNumber(number string) {
	e.mutate("set number", func(v *VolumeRecord) error {
		v.Number = number
		return nil
	})
}

// SetTitles replaces the volume's title list.
func (e *VolumeEditor) SetTitles(titles []catalog.Title) {
	e.mutate("set titles", func(v *VolumeRecord) error {
		v.Titles = copyTitles(titles)
		return nil
	})
}

// SetSummary sets the volume's summary.
func (e *VolumeEditor) SetSummary(summary string) {
	e.mutate("set summary", func(v *VolumeRecord) error {
		v.Summary = summary
		return nil
	})
}

func editionRecordFrom(ed catalog.Edition, ids repo.IDSource) EditionRecord {
	rec := EditionRecord{
		ID:      ed.ID,
		Name:    ed.Name,
		Titles:  copyTitles(ed.Titles),
		Authors: copyAuthors(ed.Authors),
		Summary: ed.Summary,
		Series:  ed.Series,
	}
	if rec.ID == "" {
		rec.ID = ids.Next()
	}
	if len(ed.Volumes) > 0 {
		rec.Volumes = make([]VolumeRecord, 0, len(ed.Volumes))
		for _, v := range ed.Volumes {
			rec.Volumes = append(rec.Volumes, volumeRecordFrom(v, ids))
		}
	}
	return rec
}

func volumeRecordFrom(v catalog.Volume, ids repo.IDSource) VolumeRecord {
	rec := VolumeRecord{
		ID:      v.ID,
		Number:  v.Number,
		Titles:  copyTitles(v.Titles),
		Summary: v.Summary,
	}
	if rec.ID == "" {
		rec.ID = ids.Next()
	}
	return rec
}
