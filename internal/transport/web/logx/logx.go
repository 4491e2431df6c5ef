// Package logx — компактные key-value хелперы поверх стандартного
// log.Logger: единый формат строк с req_id и op во всех хендлерах.
package logx

import (
	"fmt"
	"log"
	"strings"
)

func Info(l *log.Logger, reqID, op, msg string, kv ...any) {
	l.Printf("lvl=info req_id=%s op=%s msg=%q%s", reqID, op, msg, fields(kv))
}

func Error(l *log.Logger, reqID, op, msg string, err error, kv ...any) {
	l.Printf("lvl=error req_id=%s op=%s msg=%q err=%q%s", reqID, op, msg, errText(err), fields(kv))
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// fields собирает пары "k", v в " k=v ..."; непарный хвост игнорируем.
func fields(kv []any) string {
	if len(kv) < 2 {
		return ""
	}
	var sb strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		sb.WriteString(fmt.Sprintf(" %v=%v", kv[i], kv[i+1]))
	}
	return sb.String()
}
