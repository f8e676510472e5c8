// Package week вычисляет номер недели в месяце по правилам ISO 8601:
// неделя начинается с понедельника, первая неделя месяца — та, в которую попадает первый четверг месяца.
// Неделя на стыке двух месяцев целиком принадлежит тому месяцу, на который приходится ее четверг.
package week

import "time"

// Result — неделя, которой принадлежит дата.
type Result struct {
	Year  int        `json:"year" yaml:"year"`   // Год месяца Month, отличается от года даты на стыке декабря и января.
	Month time.Month `json:"month" yaml:"month"` // 1-12.
	Week  int        `json:"week" yaml:"week"`   // 1-5.
}

// Of возвращает месяц, которому принадлежит неделя с датой date, и номер этой недели в месяце.
// Используются только год, месяц и день date в ее собственной локации, время суток не важно.
//
// Month может отличаться от месяца date не больше чем на один: крайние недели месяца могут
// относиться к предыдущему или следующему месяцу.
func Of(date time.Time) Result {
	y, mon, d := date.Date()
	target := time.Date(y, mon, 1, 0, 0, 0, 0, date.Location())

	startWeekDay := weekDayOf(startOfMonth(date))

	// Номер "недели" при делении месяца на куски по 7 дней, выровненные по понедельникам.
	// Для месяца, начинающегося в воскресенье, 1-е число попадает в кусок 0.
	origWeek := ceilDiv(d+int(startWeekDay)-1, 7)
	correction := 0

	switch {
	case startWeekDay >= monday && startWeekDay <= thursday:
		// Mo Tu We Th Fr Sa Su
		//  1  2  3  4  5  6  7 :(1) 1-я
		//  ...
		// 29 30 31             :(5) 5-я или 1-я следующего месяца
		if origWeek == 5 {
			endWeekDay := weekDayOf(endOfMonth(date))
			if endWeekDay >= monday && endWeekDay <= wednesday {
				target = nextMonth(date)
				correction = -4
			}
		}

	case startWeekDay == sunday:
		// Mo Tu We Th Fr Sa Su
		//                    1 :(0) последняя неделя предыдущего месяца
		//  2  3  4  5  6  7  8 :(1) 1-я
		//  ...
		// 30 31                :(5) 1-я следующего месяца
		switch origWeek {
		case 0:
			return Of(lastDateOfPrevMonth(date))
		case 5:
			target = nextMonth(date)
			correction = -4
		}

	default:
		// Пятница или суббота.
		// Mo Tu We Th Fr Sa Su
		//              1  2  3 :(1) последняя неделя предыдущего месяца
		//  4  5  6  7  8  9 10 :(2) 1-я
		//  ...
		// 31                   :(6) 1-я следующего месяца
		switch origWeek {
		case 1:
			return Of(lastDateOfPrevMonth(date))
		case 6:
			target = nextMonth(date)
			correction = -5
		default:
			correction = -1
		}
	}

	return Result{
		Year:  target.Year(),
		Month: target.Month(),
		Week:  origWeek + correction,
	}
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
