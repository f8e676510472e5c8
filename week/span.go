package week

import (
	"errors"
	"fmt"
	"time"
)

var ErrNoSuchWeek = errors.New("no such week")

// Range — неделя месяца с датами ее понедельника и воскресенья.
// Start и End могут относиться к соседним месяцам.
type Range struct {
	Week  int       `json:"week" yaml:"week"`
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// Count возвращает количество недель, принадлежащих месяцу (4 или 5).
// Оно равно количеству четвергов в месяце.
func Count(y int, m time.Month) int {
	firstThu := firstThursday(y, m)
	return (daysIn(y, m)-firstThu)/7 + 1
}

// Span возвращает понедельник и воскресенье недели w месяца m.
// Для любой даты d из [start, end] Of(d) == Result{y, m, w}.
func Span(y int, m time.Month, w int) (start, end time.Time, err error) {
	if m < time.January || m > time.December {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %d: %w", m, ErrNoSuchWeek)
	}
	if w < 1 || w > Count(y, m) {
		return time.Time{}, time.Time{}, fmt.Errorf("week %d of %d-%02d: %w", w, y, m, ErrNoSuchWeek)
	}

	// Понедельник первой недели — за три дня до первого четверга.
	start = time.Date(y, m, firstThursday(y, m)-3+(w-1)*7, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 0, 6)
	return start, end, nil
}

// Weeks возвращает все недели месяца по порядку.
func Weeks(y int, m time.Month) []Range {
	n := Count(y, m)
	res := make([]Range, 0, n)
	for w := 1; w <= n; w++ {
		start, end, err := Span(y, m, w)
		if err != nil {
			break
		}
		res = append(res, Range{Week: w, Start: start, End: end})
	}
	return res
}

// firstThursday возвращает число месяца, на которое приходится первый четверг.
func firstThursday(y int, m time.Month) int {
	first := weekDayOf(time.Date(y, m, 1, 0, 0, 0, 0, time.UTC))
	return 1 + int((thursday-first+7)%7)
}
