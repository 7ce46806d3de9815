package services

// ProgressSink receives incremental progress during a long run. Implementations
// must not block: the orchestration transaction stays open while reports are
// delivered.
type ProgressSink interface {
	Progress(stage string, completed, total int)
}

// NopProgress discards all progress reports.
type NopProgress struct{}

func (NopProgress) Progress(string, int, int) {}
