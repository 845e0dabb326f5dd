package driver

import (
	"errors"

	"ruchy/parser"
	"ruchy/transpile"
	"ruchy/types"
)

// SourceError ties a front-end, lowering or runtime error to the source
// text its positions refer to
type SourceError struct {
	Name   string
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Render formats the error with an excerpt of the source under it
func (e *SourceError) Render() string {
	var diags parser.Diagnostics
	var lerr *transpile.LoweringError
	var rerr *types.RuntimeError
	switch {
	case errors.As(e.Err, &diags):
		return diags.RenderAll(e.Name, e.Source)
	case errors.As(e.Err, &lerr):
		return lerr.Render(e.Name, e.Source)
	case errors.As(e.Err, &rerr):
		return rerr.Render(e.Name, e.Source)
	}
	return e.Error() + "\n"
}

// Render formats any error returned by the driver for a terminal
func Render(err error) string {
	var serr *SourceError
	if errors.As(err, &serr) {
		return serr.Render()
	}
	return err.Error() + "\n"
}
