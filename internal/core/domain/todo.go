package domain

import "strings"

type Status string

const (
	StatusAll       Status = "All"
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
)

// Statuses lists the filter selectors in display order.
var Statuses = []Status{StatusAll, StatusActive, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusAll, StatusActive, StatusCompleted:
		return true
	default:
		return false
	}
}

// Todo is a record confirmed by the remote collection. ID is always server assigned.
type Todo struct {
	ID        int    `json:"id"`
	UserID    int    `json:"userId"`
	Title     string `json:"title" validate:"required,max=255"`
	Completed bool   `json:"completed"`
}

func (t Todo) Persisted() bool {
	return t.ID > 0
}

func (t Todo) DisplayTitle() string {
	return strings.TrimSpace(t.Title)
}

func (t Todo) BelongsToUser(userID int) bool {
	return t.UserID == userID
}

// Draft is the payload for a create call and the content of a pending row.
type Draft struct {
	UserID    int    `json:"userId" validate:"gt=0"`
	Title     string `json:"title" validate:"required,max=255"`
	Completed bool   `json:"completed"`
}

// TodoPatch carries only the fields to overwrite on an existing record.
type TodoPatch struct {
	ID        int
	UserID    *int
	Title     *string
	Completed *bool
}

func PatchTitle(id int, title string) TodoPatch {
	return TodoPatch{ID: id, Title: &title}
}

func PatchCompleted(id int, completed bool) TodoPatch {
	return TodoPatch{ID: id, Completed: &completed}
}

// PatchFrom builds a patch supplying every field of t.
func PatchFrom(t Todo) TodoPatch {
	return TodoPatch{
		ID:        t.ID,
		UserID:    &t.UserID,
		Title:     &t.Title,
		Completed: &t.Completed,
	}
}

// Apply returns t with the supplied fields overwritten.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.UserID != nil {
		t.UserID = *p.UserID
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}

	return t
}

// Row is one entry of the rendered list: either a confirmed record or the
// pending draft of an in-flight create. Exactly one of Todo and Pending is set.
type Row struct {
	Todo    *Todo
	Pending *Draft
	Editor  EditorState
}

func ConfirmedRow(t Todo, state EditorState) Row {
	return Row{Todo: &t, Editor: state}
}

func PendingRow(d Draft) Row {
	return Row{Pending: &d, Editor: EditorState{Busy: true}}
}

func (r Row) IsPending() bool {
	return r.Pending != nil
}

func (r Row) Title() string {
	if r.Pending != nil {
		return strings.TrimSpace(r.Pending.Title)
	}
	if r.Todo != nil {
		return r.Todo.DisplayTitle()
	}
	return ""
}

func (r Row) Completed() bool {
	if r.Todo != nil {
		return r.Todo.Completed
	}
	return r.Pending != nil && r.Pending.Completed
}

type EditorMode int

const (
	EditorViewing EditorMode = iota
	EditorEditing
)

func (m EditorMode) String() string {
	switch m {
	case EditorEditing:
		return "editing"
	default:
		return "viewing"
	}
}

// EditorState is the per-record presentation state kept outside the collection.
type EditorState struct {
	Mode  EditorMode
	Draft string
	Busy  bool
}

func (s EditorState) IsEditing() bool {
	return s.Mode == EditorEditing
}
