package source

import (
	"time"

	"github.com/nvkalinin/week-of-month/store"
	"github.com/nvkalinin/week-of-month/week"
)

// ISO строит календарь на год, в котором для каждого дня указана неделя месяца по ISO 8601.
// Календарь считается локально, поэтому GetYear никогда не возвращает ошибку.
type ISO struct{}

func NewISO() *ISO {
	return &ISO{}
}

func (*ISO) GetYear(targetYear int) (store.Months, error) {
	cal := make(store.Months, 12)

	date := time.Date(targetYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	for date.Year() == targetYear {
		mon := date.Month()
		if _, ok := cal[mon]; !ok {
			cal[mon] = make(store.Days, 31)
		}

		wd, _ := store.NewWeekDay(date.Weekday())
		cal[mon][date.Day()] = store.Day{
			WeekDay: wd,
			Week:    week.Of(date),
		}

		date = date.AddDate(0, 0, 1)
	}

	return cal, nil
}
