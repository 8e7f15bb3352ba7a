package request

// CreateTodoRequest is the body of POST /todos.
type CreateTodoRequest struct {
	UserID    int    `json:"userId" validate:"gt=0"`
	Title     string `json:"title" validate:"required,max=255"`
	Completed bool   `json:"completed"`
}

// UpdateTodoRequest is the body of PATCH /todos/:id. Absent fields are kept.
type UpdateTodoRequest struct {
	UserID    *int    `json:"userId,omitempty" validate:"omitnil,gt=0"`
	Title     *string `json:"title,omitempty" validate:"omitnil,min=1,max=255"`
	Completed *bool   `json:"completed,omitempty"`
}
