package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one persisted conversation message. Turns are append-only and
// ordered by insertion id.
type Turn struct {
	ID        int64
	UserID    int64
	Role      Role
	Content   string
	HasMedia  bool
	CreatedAt time.Time
}
