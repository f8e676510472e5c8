package week

import "time"

// weekDay — день недели в числовом виде: 0 — воскресенье, 6 — суббота.
// Все сравнения в Of идут только через этот тип, time.Weekday напрямую не используется.
type weekDay int

const (
	sunday weekDay = iota
	monday
	tuesday
	wednesday
	thursday
	friday
	saturday
)

func weekDayOf(t time.Time) weekDay {
	// @formatter:off
	switch t.Weekday() {
	case time.Sunday:    return sunday
	case time.Monday:    return monday
	case time.Tuesday:   return tuesday
	case time.Wednesday: return wednesday
	case time.Thursday:  return thursday
	case time.Friday:    return friday
	default:             return saturday
	}
	// @formatter:on
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func endOfMonth(t time.Time) time.Time {
	// day=0 нормализуется в последний день предыдущего месяца.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

// nextMonth не использует AddDate(0, 1, 0): 31 января + 1 месяц в Go дает 3 марта.
func nextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

func lastDateOfPrevMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 0, 0, 0, 0, 0, t.Location())
}

func daysIn(y int, m time.Month) int {
	return endOfMonth(time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)).Day()
}
