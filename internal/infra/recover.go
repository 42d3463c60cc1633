package infra

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// GoRecoverable runs f and restarts it on panic. A negative maxPanics allows unlimited
// restarts; once a non-negative budget is spent the panic is logged and the job stays down.
func GoRecoverable(maxPanics int, id string, f func()) {
	entry := log.WithField("object", "GoRecoverable").WithField("job", id)
	defer func() {
		if err := recover(); err != nil {
			entry.WithField("panic", fmt.Sprint(err)).WithField("at", identifyPanic()).Error("job panicked")
			if maxPanics == 0 {
				entry.Error("panics limit exceeded, job stopped")
				return
			}
			if maxPanics > 0 {
				maxPanics--
			}
			entry.WithField("panics_left", maxPanics).Debug("restarting job")
			go GoRecoverable(maxPanics, id, f)
		}
	}()
	f()
}

// ErrPanic is wrapped by errors produced by Recover.
var ErrPanic = errors.New("panic")

// Recover converts a panic into an error for request-scoped boundaries.
func Recover(errp *error) {
	if r := recover(); r != nil {
		*errp = errors.Wrapf(ErrPanic, "%v at %s", r, identifyPanic())
	}
}

func identifyPanic() string {
	var name, file string
	var line int
	var pc [16]uintptr

	n := runtime.Callers(3, pc[:])
	for _, pc := range pc[:n] {
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		file, line = fn.FileLine(pc)
		name = fn.Name()
		if !strings.HasPrefix(name, "runtime.") {
			break
		}
	}

	switch {
	case name != "":
		return fmt.Sprintf("%v:%v", name, line)
	case file != "":
		return fmt.Sprintf("%v:%v", file, line)
	}
	return fmt.Sprintf("pc:%x", pc)
}
