package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/emirkorkmazz/lokanta-api/auth"
)

// zerologAdapter satisfies auth.Logger on top of a zerolog.Logger.
type zerologAdapter struct {
	log zerolog.Logger
}

func newLogger() *zerologAdapter {
	return &zerologAdapter{
		log: zerolog.New(os.Stderr).With().Timestamp().Str("component", "auth").Logger(),
	}
}

func (z *zerologAdapter) Debug(format string, args ...any) { z.emit(z.log.Debug(), format, args) }
func (z *zerologAdapter) Info(format string, args ...any)  { z.emit(z.log.Info(), format, args) }
func (z *zerologAdapter) Warn(format string, args ...any)  { z.emit(z.log.Warn(), format, args) }
func (z *zerologAdapter) Error(format string, args ...any) { z.emit(z.log.Error(), format, args) }

// emit supports the auth package's message-plus-key-value call style; odd
// leftovers are appended to the message.
func (z *zerologAdapter) emit(ev *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		ev = ev.Interface(key, args[i+1])
	}
	if len(args)%2 != 0 {
		msg = fmt.Sprintf("%s %v", msg, args[len(args)-1])
	}
	ev.Msg(msg)
}

var _ auth.Logger = (*zerologAdapter)(nil)
