package pipeline

import (
	"errors"
	"fmt"
)

var ErrInputTooLarge = errors.New("pipeline: input exceeds word limit")

// Stage names reported by StageError.
const (
	StageInput  = "input"
	StageConfig = "config"
	StageHeader = "header"
	StageBeacon = "beacon"
	StageBands  = "bands"
)

// StageError attaches the failing stage, and for band failures the band and
// block, to an underlying error.
type StageError struct {
	Stage string
	Band  int
	Block int
	Err   error
}

func (e StageError) Error() string {
	if e.Stage == StageBands && e.Band >= 0 {
		return fmt.Sprintf("pipeline: stage=%s band=%d block=%d: %v", e.Stage, e.Band, e.Block, e.Err)
	}
	return fmt.Sprintf("pipeline: stage=%s: %v", e.Stage, e.Err)
}

func (e StageError) Unwrap() error { return e.Err }

func stageErr(stage string, err error) error {
	return StageError{Stage: stage, Band: -1, Block: -1, Err: err}
}
