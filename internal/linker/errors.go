package linker

import "fmt"

// MissingExportError is returned when an imported or re-exported name has
// no corresponding export and shimming is disabled.
type MissingExportError struct {
	Name     string
	Importer string
	Importee string
}

func (e *MissingExportError) Error() string {
	return fmt.Sprintf("%q is not exported by %q (imported by %q)", e.Name, e.Importee, e.Importer)
}

// CircularReExportError is returned when a module re-exports a name from
// itself that it does not actually declare.
type CircularReExportError struct {
	Name string
	File string
}

func (e *CircularReExportError) Error() string {
	return fmt.Sprintf("%q does not exist in %q, but it was re-exported from itself", e.Name, e.File)
}

// FatalError wraps the single fatal error the linker returns. The
// exports and imports passes run single-threaded in execution
// order and halt immediately on the first fatal failure - diagnostics are
// not batched the way loader errors are.
type FatalError struct {
	Module string
	Err    error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Module, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
