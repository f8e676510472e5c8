package week

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Форматы, которые понимает Parse. Все содержат год: без года день недели не определить.
var layouts = []string{
	"2006-01-02",
	"20060102",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse date '%s': %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse превращает строку в дату. Восемь цифр — всегда дата YYYYMMDD ("20240801" — 1 августа 2024).
// Любое другое целое число считается unix timestamp в миллисекундах (как Date.now() в JS),
// такая дата считается в UTC.
func Parse(s string) (time.Time, error) {
	val := strings.TrimSpace(s)

	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, val)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	if len(val) == len("20060102") {
		return time.Time{}, &ParseError{Value: s, Err: lastErr}
	}
	if ms, err := strconv.ParseInt(val, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, &ParseError{Value: s, Err: lastErr}
}

// OfString — Parse + Of.
func OfString(s string) (Result, error) {
	t, err := Parse(s)
	if err != nil {
		return Result{}, err
	}
	return Of(t), nil
}
