package store

import (
	"testing"
	"time"

	"github.com/nvkalinin/week-of-month/week"
	"github.com/stretchr/testify/assert"
)

func TestMonths_Copy(t *testing.T) {
	mOrig := Months{
		time.January: Days{
			1: {WeekDay: Sunday, Week: week.Result{Year: 2022, Month: time.December, Week: 5}},
		},
	}

	mCopy := mOrig.Copy()
	mCopy[time.January][1] = Day{WeekDay: Monday}

	assert.NotEqual(t, mCopy, mOrig)
	assert.Equal(t, Sunday, mOrig[time.January][1].WeekDay)
}

func TestNewWeekDay(t *testing.T) {
	wd, ok := NewWeekDay(time.Thursday)
	assert.True(t, ok)
	assert.Equal(t, Thursday, wd)

	_, ok = NewWeekDay(time.Weekday(7))
	assert.False(t, ok)
}
