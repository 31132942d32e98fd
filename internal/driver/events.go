package driver

import "time"

// Stage is a step of one package run.
type Stage uint8

const (
	StageQueued Stage = iota
	StageLoad
	StageAnalyze
	StageCollect
	StageEmit
	StageWrite
)

func (s Stage) String() string {
	switch s {
	case StageQueued:
		return "queued"
	case StageLoad:
		return "load"
	case StageAnalyze:
		return "analyze"
	case StageCollect:
		return "collect"
	case StageEmit:
		return "emit"
	case StageWrite:
		return "write"
	}
	return "unknown"
}

// Status reports where a package is within a stage.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event describes progress of one package. Package is the config path, which
// stays unique within a batch.
type Event struct {
	Package string
	Stage   Stage
	Status  Status
	Elapsed time.Duration
	Err     error
}

// Observer receives events; it is called from the goroutine running the package.
type Observer func(Event)

func (o Observer) emit(ev Event) {
	if o != nil {
		o(ev)
	}
}
