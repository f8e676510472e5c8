package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	assert.Equal(t, 5, Count(2024, time.August))   // Четверги: 1, 8, 15, 22, 29.
	assert.Equal(t, 4, Count(2025, time.February)) // 6, 13, 20, 27.
	assert.Equal(t, 5, Count(2024, time.February)) // Високосный, 29-е — четверг.
	assert.Equal(t, 4, Count(2024, time.November))
}

func TestSpan(t *testing.T) {
	start, end, err := Span(2024, time.August, 1)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.July, 29), start)
	assert.Equal(t, date(2024, time.August, 4), end)

	start, end, err = Span(2022, time.December, 5)
	require.NoError(t, err)
	assert.Equal(t, date(2022, time.December, 26), start)
	assert.Equal(t, date(2023, time.January, 1), end)

	_, _, err = Span(2025, time.February, 5)
	assert.ErrorIs(t, err, ErrNoSuchWeek)

	_, _, err = Span(2025, time.February, 0)
	assert.ErrorIs(t, err, ErrNoSuchWeek)

	_, _, err = Span(2025, 13, 1)
	assert.ErrorIs(t, err, ErrNoSuchWeek)
}

// Span — обратная функция к Of: каждый день недели должен вычисляться обратно в ту же неделю.
func TestSpan_inverseOfOf(t *testing.T) {
	for y := 2000; y <= 2030; y++ {
		for m := time.January; m <= time.December; m++ {
			weeks := Weeks(y, m)
			require.Len(t, weeks, Count(y, m))

			for _, w := range weeks {
				assert.Equal(t, time.Monday, w.Start.Weekday())
				assert.Equal(t, time.Sunday, w.End.Weekday())

				for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
					require.Equal(t, Result{y, m, w.Week}, Of(d), d.Format("2006-01-02"))
				}
			}
		}
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("2024-08-01")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.August, 1), d)

	d, err = Parse(" 2024-08-01T12:30:00 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.August, 1, 12, 30, 0, 0, time.UTC), d)

	// Компактная запись даты — не timestamp.
	d, err = Parse("20240801")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.August, 1), d)
	assert.Equal(t, Result{2024, time.August, 1}, Of(d))

	d, err = Parse("1722470400000") // 2024-08-01 00:00:00 UTC в миллисекундах.
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.August, 1), d)

	d, err = Parse("1722556799999") // Последняя миллисекунда 1 августа.
	require.NoError(t, err)
	assert.Equal(t, Result{2024, time.August, 1}, Of(d))

	// Восемь цифр, но 13-й месяц: ошибка, а не timestamp.
	_, err = Parse("20241301")
	assert.ErrorContains(t, err, "cannot parse date '20241301'")

	_, err = Parse("08-01")
	assert.ErrorContains(t, err, "cannot parse date '08-01'")
}
