package notes

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Notes is the note store. Every operation is scoped to an owner id; a
// note that exists but belongs to someone else behaves as not found.
type Notes interface {
	Create(ctx context.Context, note *Note) (*Note, error)
	GetByOwner(ctx context.Context, ownerID, noteID uuid.UUID) (*Note, error)
	Update(ctx context.Context, note *Note) (*Note, error)
	ToggleArchive(ctx context.Context, ownerID, noteID uuid.UUID) (*Note, error)
	Delete(ctx context.Context, ownerID, noteID uuid.UUID) (*Note, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, archived bool) ([]*Note, error)
}

type notesRepo struct {
	db *bun.DB
}

var _ Notes = (*notesRepo)(nil)

func NewNotesRepository(db *bun.DB) Notes {
	return &notesRepo{db: db}
}

func (r *notesRepo) Create(ctx context.Context, note *Note) (*Note, error) {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if note.Title == "" {
		note.Title = DefaultNoteTitle
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}

	if _, err := r.db.NewInsert().Model(note).Exec(ctx); err != nil {
		return nil, err
	}

	return r.GetByOwner(ctx, note.UserID, note.ID)
}

func (r *notesRepo) GetByOwner(ctx context.Context, ownerID, noteID uuid.UUID) (*Note, error) {
	record := &Note{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ? AND ?TableAlias.user_id = ?", noteID, ownerID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	return record, nil
}

// Update persists title, content, tags, and the archived flag. The owner
// guard rides in the WHERE clause so a cross-user update affects no rows.
func (r *notesRepo) Update(ctx context.Context, note *Note) (*Note, error) {
	now := time.Now()
	note.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(note).
		Column("title", "content", "tags", "archived", "updated_at").
		Where("?TableAlias.id = ? AND ?TableAlias.user_id = ?", note.ID, note.UserID).
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrNoteNotFound
	}

	return r.GetByOwner(ctx, note.UserID, note.ID)
}

func (r *notesRepo) ToggleArchive(ctx context.Context, ownerID, noteID uuid.UUID) (*Note, error) {
	note, err := r.GetByOwner(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}

	note.Archived = !note.Archived
	return r.Update(ctx, note)
}

// Delete removes the note and returns the deleted record so handlers can
// echo {id, title} back to the client.
func (r *notesRepo) Delete(ctx context.Context, ownerID, noteID uuid.UUID) (*Note, error) {
	note, err := r.GetByOwner(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}

	if _, err := r.db.NewDelete().
		Model((*Note)(nil)).
		Where("?TableAlias.id = ? AND ?TableAlias.user_id = ?", noteID, ownerID).
		Exec(ctx); err != nil {
		return nil, err
	}

	return note, nil
}

func (r *notesRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, archived bool) ([]*Note, error) {
	var records []*Note
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ? AND ?TableAlias.archived = ?", ownerID, archived).
		Order("updated_at DESC").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*Note{}, nil
		}
		return nil, err
	}

	if records == nil {
		records = []*Note{}
	}

	return records, nil
}
