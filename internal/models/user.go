package models

import "time"

type Role string

const (
	Student Role = "student"
	Teacher Role = "teacher"
)

// Valid: только две роли, которые можно выбрать при регистрации.
func (r Role) Valid() bool {
	return r == Student || r == Teacher
}

type User struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

func (u *User) IsTeacher() bool {
	return u != nil && u.Role == Teacher
}
