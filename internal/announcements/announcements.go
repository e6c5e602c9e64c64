// Package announcements содержит чистые функции для списка объявлений: поиск, подписи, даты.
package announcements

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Spok95/school-board-bot/internal/models"
)

const (
	SchoolWideLabel = "School-wide"
	CourseLabel     = "Course"
	DateLayout      = "Jan 02, 2006"
)

// Filter оставляет объявления, где query встречается в заголовке или тексте без учёта регистра.
// Пустой запрос: весь список. Исходный срез не меняется.
func Filter(list []models.Announcement, query string) []models.Announcement {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Announcement, 0, len(list))
	for _, a := range list {
		if q == "" ||
			strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strings.ToLower(a.Content), q) {
			out = append(out, a)
		}
	}
	return out
}

// Label возвращает подпись аудитории: «School-wide», название курса или «Course», если курс не знаем.
func Label(a models.Announcement, courses []models.Course) string {
	id, ok := a.CourseID()
	if !ok {
		return SchoolWideLabel
	}
	for _, c := range courses {
		if c.ID == id {
			return c.Title
		}
	}
	return CourseLabel
}

func CanDelete(u *models.User, a models.Announcement) bool {
	return u != nil && u.IsTeacher() && u.ID == a.TeacherID
}

// FormatDate печатает дату в loc; nil: UTC.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// Preview обрезает текст до n рун с многоточием.
func Preview(content string, n int) string {
	content = strings.TrimSpace(content)
	if n <= 0 || utf8.RuneCountInString(content) <= n {
		return content
	}
	r := []rune(content)
	return strings.TrimRight(string(r[:n]), " \n") + "…"
}
