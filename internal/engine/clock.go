/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package engine

import "time"

// clock abstracts wall-clock reads and cancellable deferred calls so tests
// can run the round timer and inter-round delay without sleeping real
// seconds. The production implementation wraps time.AfterFunc.
type clock interface {
	nowMS() int64
	afterFunc(d time.Duration, f func()) func() bool
}

type realClock struct{}

func (realClock) nowMS() int64 {
	return time.Now().UnixMilli()
}

func (realClock) afterFunc(d time.Duration, f func()) func() bool {
	t := time.AfterFunc(d, f)
	return t.Stop
}
