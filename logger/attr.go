package logger

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

/*
Log field key values. Only define names here if they are common for multiple
modules, module specific names should be defined in the module.
*/
const (
	ModuleKey  = "module"
	GoIDKey    = "go_id"
	AddressKey = "address"
	ProgramKey = "program"
	RoundKey   = "round"
	DataKey    = "data"
)

/*
Module returns sub-logger which adds the module name to every message.

	log := logger.Module(parent, "auctionhouse")
*/
func Module(l *zerolog.Logger, name string) *zerolog.Logger {
	sub := l.With().Str(ModuleKey, name).Logger()
	return &sub
}

/*
Address adds the address of the primary account associated to the logging call.

	log.Debug().Func(logger.Address(addr)).Msg("account closed")
*/
func Address(addr fmt.Stringer) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		e.Stringer(AddressKey, addr)
	}
}

// Round adds the sequence number of the batch.
func Round(n uint64) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		e.Uint64(RoundKey, n)
	}
}

/*
Data adds additional data field to the message. Use of anonymous types is
discouraged.
*/
func Data(d any) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		e.Interface(DataKey, d)
	}
}

type goRoutineIDHook struct{}

func (h goRoutineIDHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	e.Uint64(GoIDKey, goroutineID())
}

// Hackish way to get the goroutine id
func goroutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

// Returns caller with last two directories.
func consoleFormatCallerLastTwoDirs(i interface{}) string {
	var c string
	if cc, ok := i.(string); ok {
		c = cc
	}
	if len(c) > 0 {
		split := strings.Split(c, string(os.PathSeparator))
		l := len(split)
		if l > 2 {
			c = fmt.Sprintf("%s/%s/%s", split[l-3], split[l-2], split[l-1])
		} else if l > 1 {
			c = fmt.Sprintf("%s/%s", split[l-2], split[l-1])
		}
	}
	return c
}
