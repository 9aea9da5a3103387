package notes

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// NotesController handles the note CRUD routes. Every route runs behind
// the access gate; the owner id comes from the claims in router locals.
type NotesController struct {
	Logger       Logger
	Store        Notes
	ContextKey   string
	ErrorHandler router.ErrorHandler
}

type NotesControllerOption func(*NotesController) *NotesController

func NewNotesController(opts ...NotesControllerOption) *NotesController {
	c := &NotesController{
		Logger:     defLogger{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Store == nil {
		panic("Missing Notes store in notes controller...")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = APIErrorHandler(c.Logger)
	}

	return c
}

func WithNotesStore(store Notes) NotesControllerOption {
	return func(c *NotesController) *NotesController {
		c.Store = store
		return c
	}
}

func WithNotesLogger(logger Logger) NotesControllerOption {
	return func(c *NotesController) *NotesController {
		c.Logger = logger
		return c
	}
}

func WithNotesContextKey(key string) NotesControllerOption {
	return func(c *NotesController) *NotesController {
		c.ContextKey = key
		return c
	}
}

// RegisterRoutes mounts the note endpoints behind the given gate.
func (n *NotesController) RegisterRoutes(group RouteRegistrar, protected router.MiddlewareFunc) {
	group.Get("", n.List, protected)
	group.Post("", n.Create, protected)
	group.Get("/:id", n.Show, protected)
	group.Put("/:id", n.Update, protected)
	group.Put("/:id/archive", n.ToggleArchive, protected)
	group.Delete("/:id", n.Delete, protected)
}

// NotePayload carries the writable note fields for create.
type NotePayload struct {
	Title   string   `form:"title" json:"title"`
	Content string   `form:"content" json:"content"`
	Tags    []string `form:"tags" json:"tags"`
}

// Validate will validate the payload
func (p NotePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Length(0, 200)),
		validation.Field(&p.Content, validation.Length(0, 50_000)),
	)
}

// NoteUpdatePayload uses pointer fields so an omitted field can be told
// apart from an explicit empty value. Only provided fields are applied.
type NoteUpdatePayload struct {
	Title    *string  `form:"title" json:"title"`
	Content  *string  `form:"content" json:"content"`
	Tags     []string `form:"tags" json:"tags"`
	Archived *bool    `form:"archived" json:"archived"`
}

// Validate will validate the payload
func (p NoteUpdatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Length(0, 200)),
		validation.Field(&p.Content, validation.Length(0, 50_000)),
	)
}

// List returns the caller's notes. Archived notes are hidden unless the
// request asks for them with ?archived=true.
func (n *NotesController) List(ctx router.Context) error {
	ownerID, err := n.ownerID(ctx)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	archived := ctx.Query("archived", "false") == "true"

	records, err := n.Store.ListByOwner(ctx.Context(), ownerID, archived)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"notes": records,
	})
}

func (n *NotesController) Create(ctx router.Context) error {
	ownerID, err := n.ownerID(ctx)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	payload := new(NotePayload)
	if err := ctx.Bind(payload); err != nil {
		return n.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return n.ErrorHandler(ctx, validationError(err))
	}

	record, err := n.Store.Create(ctx.Context(), &Note{
		UserID:  ownerID,
		Title:   payload.Title,
		Content: payload.Content,
		Tags:    payload.Tags,
	})
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, record)
}

func (n *NotesController) Show(ctx router.Context) error {
	ownerID, err := n.ownerID(ctx)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	noteID, err := n.noteID(ctx)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	record, err := n.Store.GetByOwner(ctx.Context(), ownerID, noteID)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, record)
}

func (n *NotesController) Update(ctx router.Context) error {
	ownerID, err := n.ownerID(ctx)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	noteID, err := n.noteID(ctx)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	payload := new(NoteUpdatePayload)
	if err := ctx.Bind(payload); err != nil {
		return n.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return n.ErrorHandler(ctx, validationError(err))
	}

	record, err := n.Store.GetByOwner(ctx.Context(), ownerID, noteID)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	if payload.Title != nil {
		record.Title = *payload.Title
	}
	if payload.Content != nil {
		record.Content = *payload.Content
	}
	if payload.Tags != nil {
		record.Tags = payload.Tags
	}
	if payload.Archived != nil {
		record.Archived = *payload.Archived
	}

	updated, err := n.Store.Update(ctx.Context(), record)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, updated)
}

func (n *NotesController) ToggleArchive(ctx router.Context) error {
	ownerID, err := n.ownerID(ctx)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	noteID, err := n.noteID(ctx)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	record, err := n.Store.ToggleArchive(ctx.Context(), ownerID, noteID)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, record)
}

// Delete removes the note and echoes back the id and title of the deleted
// record.
func (n *NotesController) Delete(ctx router.Context) error {
	ownerID, err := n.ownerID(ctx)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	noteID, err := n.noteID(ctx)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	record, err := n.Store.Delete(ctx.Context(), ownerID, noteID)
	if err != nil {
		return n.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"id":    record.ID,
		"title": record.Title,
	})
}

func (n *NotesController) ownerID(ctx router.Context) (uuid.UUID, error) {
	claims, ok := GetRouterClaims(ctx, n.ContextKey)
	if !ok {
		return uuid.Nil, ErrUnableToFindSession
	}

	ownerID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CategoryAuth, "invalid subject in claims").
			WithCode(errors.CodeUnauthorized)
	}

	return ownerID, nil
}

func (n *NotesController) noteID(ctx router.Context) (uuid.UUID, error) {
	noteID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, errors.New("invalid note id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}
	return noteID, nil
}
