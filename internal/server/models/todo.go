package models

import "time"

// Todo is a task owned by exactly one user.
type Todo struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Importance  int       `json:"importance"`
	Complete    bool      `json:"complete"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnedBy reports whether userID owns the todo.
func (t *Todo) OwnedBy(userID int64) bool {
	return t.UserID == userID
}
