package depbom

import (
	"errors"
	"fmt"

	"github.com/albertocavalcante/go-depbom/bom"
	"github.com/albertocavalcante/go-depbom/label"
)

// Sentinel errors re-exported for callers of Generate.
var (
	// ErrValidation indicates the written document failed schema validation.
	ErrValidation = bom.ErrValidation

	// ErrMalformedCoordinate indicates a resolved artifact has an unusable identity.
	ErrMalformedCoordinate = label.ErrMalformedCoordinate

	// ErrInvalidTransition indicates an assembler step was called out of order.
	ErrInvalidTransition = errors.New("invalid assembler state transition")
)

// Stage names a step of BOM generation.
type Stage string

// Generation stages, in execution order.
const (
	StageWalk      Stage = "walk"
	StageAssemble  Stage = "assemble"
	StageSerialize Stage = "serialize"
	StageWrite     Stage = "write"
	StageValidate  Stage = "validate"
	StageSign      Stage = "sign"
)

// StageError is a fatal failure of one generation stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("depbom %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(s Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: s, Err: err}
}
