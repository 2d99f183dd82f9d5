package util

import (
	"log"
	"time"
)

// Trace 记录耗时，defer Trace("xxx")() 使用
func Trace(name string) func() {
	start := time.Now()
	return func() {
		log.Printf("%s cost %v", name, time.Since(start))
	}
}
