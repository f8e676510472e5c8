// Package log — тонкая обертка над стандартным log. Уровень сообщения задается префиксом
// в формате: [DEBUG], [INFO], [WARN], [ERROR]. Сообщения [DEBUG] выводятся только при AllowDebug.
package log

import (
	"fmt"
	"io"
	"log"
	"strings"
)

var AllowDebug = false

// Setup включает отладочные сообщения и, вместе с ними, имя файла и строку в каждой записи лога.
func Setup(debug bool) {
	AllowDebug = debug

	flags := log.LstdFlags
	if debug {
		flags |= log.Lmicroseconds | log.Lshortfile
	}
	log.SetFlags(flags)
}

func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func Printf(format string, v ...any) {
	if !allowed(format) {
		return
	}
	_ = log.Output(2, fmt.Sprintf(format, v...))
}

func Fatalf(format string, v ...any) {
	if !allowed(format) {
		return
	}
	log.Fatalf(format, v...)
}

func allowed(s string) bool {
	if AllowDebug {
		return true
	}
	return !strings.HasPrefix(s, "[DEBUG]")
}
