package variant

import "fmt"

// ParseError represents an error during table parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Message)
}

// InputReadError reports a raw or normalized table that could not be read.
// It is always fatal: no partial output is written.
type InputReadError struct {
	Path string
	Err  error
}

func (e *InputReadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("read input: %v", e.Err)
	}
	return fmt.Sprintf("read input %s: %v", e.Path, e.Err)
}

func (e *InputReadError) Unwrap() error {
	return e.Err
}
