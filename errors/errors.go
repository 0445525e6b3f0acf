package errors

import "fmt"

var (
	ErrWorkerPanic  = fmt.Errorf("worker panic")
	ErrSlowConsumer = fmt.Errorf("outbound buffer full")
)
