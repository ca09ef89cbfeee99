/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package config

import (
	"log"
	"time"
)

const logDate string = `2006-01-02T15:04:05.000-07:00`

func logPrintf(format string, args ...any) {
	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}
