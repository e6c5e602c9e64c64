package models

type Course struct {
	ID        int64  `db:"id"`
	Title     string `db:"title"`
	TeacherID int64  `db:"teacher_id"`
}
