package repomanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/scorekeeper/internal/logging"
)

// gooseLogger routes goose output into the structured logger.
type gooseLogger struct {
	ctx    context.Context
	logger logging.Logger
}

func (l *gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(l.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf keeps goose's contract that the call does not return, without
// exiting the process from inside a library.
func (l *gooseLogger) Fatalf(format string, v ...any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	l.logger.Error(l.ctx, msg)
	panic(msg)
}
