package models

import "time"

// Audience описывает, кому адресовано объявление: всей школе или одному курсу.
// Реализации: SchoolWide и CourseScoped.
type Audience interface {
	isAudience()
}

type SchoolWide struct{}

type CourseScoped struct {
	CourseID int64
}

func (SchoolWide) isAudience()   {}
func (CourseScoped) isAudience() {}

type Announcement struct {
	ID        int64
	Title     string
	Content   string
	CreatedAt time.Time
	TeacherID int64
	Audience  Audience
}

// IsSchoolWide: true, если объявление не привязано к курсу. Nil-аудитория считается общешкольной.
func (a Announcement) IsSchoolWide() bool {
	switch a.Audience.(type) {
	case CourseScoped:
		return false
	default:
		return true
	}
}

// CourseID возвращает курс для объявлений курса.
func (a Announcement) CourseID() (int64, bool) {
	if c, ok := a.Audience.(CourseScoped); ok {
		return c.CourseID, true
	}
	return 0, false
}
