// Package logger carries diagnostics out of the loader and linker. The
// shape (a struct of closures rather than an interface) is kept from the
// teacher's internal/logger package, but the formatting layer underneath
// is replaced: instead of hand-rolled terminal formatting, messages are
// handed to a logrus.FieldLogger, so embedders can route warnings through
// whatever sink they already use for application logs.
package logger

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// MsgKind classifies a Msg. Only errors and warnings are produced by this
// module; Note is reserved for supplementary detail attached to either.
type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Note
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// ID names the specific diagnostic, one entry per error/warning kind the
// loader and linker can produce.
type ID uint8

const (
	UnresolvedEntry ID = iota
	UnresolvedImport
	ParseFailed
	IoError
	MissingExport
	CircularReExport
	AmbiguousExternalNamespaces
	ShimmedExport
)

func (id ID) String() string {
	switch id {
	case UnresolvedEntry:
		return "unresolved-entry"
	case UnresolvedImport:
		return "unresolved-import"
	case ParseFailed:
		return "parse-failed"
	case IoError:
		return "io-error"
	case MissingExport:
		return "missing-export"
	case CircularReExport:
		return "circular-reexport"
	case AmbiguousExternalNamespaces:
		return "ambiguous-external-namespaces"
	case ShimmedExport:
		return "shimmed-export"
	default:
		return "unknown"
	}
}

// Msg is one diagnostic: a classified, identified piece of text plus the
// module path it concerns, if any.
type Msg struct {
	Kind   MsgKind
	ID     ID
	Text   string
	Module string
	Notes  []string
}

// Log is the sink threaded through the loader and linker as on_warn.
// It is intentionally a struct of closures, not an interface, matching
// esbuild's own internal/logger.Log: callers that only want to observe
// errors can swap in a stub without satisfying a larger method set.
type Log struct {
	AddMsg    func(Msg)
	HasErrors func() bool
	Done      func() []Msg
}

// NewDeferLog returns a Log that buffers every message and replays them,
// sorted by module path then kind, once Done is called. This gives a
// deterministic diagnostic ordering even though the loader and linker run
// concurrently or in unspecified order: nothing reads Done's result until
// after the build finishes.
func NewDeferLog(sink logrus.FieldLogger) Log {
	mutex := sync.Mutex{}
	var msgs []Msg
	hasErrors := false

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			msgs = append(msgs, msg)
			if msg.Kind == Error {
				hasErrors = true
			}
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			sorted := make([]Msg, len(msgs))
			copy(sorted, msgs)
			sort.SliceStable(sorted, func(i, j int) bool {
				if sorted[i].Module != sorted[j].Module {
					return sorted[i].Module < sorted[j].Module
				}
				return sorted[i].Kind < sorted[j].Kind
			})
			if sink != nil {
				for _, msg := range sorted {
					entry := sink.WithField("id", msg.ID.String())
					if msg.Module != "" {
						entry = entry.WithField("module", msg.Module)
					}
					switch msg.Kind {
					case Error:
						entry.Error(msg.Text)
					case Warning:
						entry.Warn(msg.Text)
					default:
						entry.Info(msg.Text)
					}
				}
			}
			return sorted
		},
	}
}

func AddError(log Log, module string, id ID, text string) {
	log.AddMsg(Msg{Kind: Error, ID: id, Text: text, Module: module})
}

func AddWarning(log Log, module string, id ID, text string, notes ...string) {
	log.AddMsg(Msg{Kind: Warning, ID: id, Text: text, Module: module, Notes: notes})
}
