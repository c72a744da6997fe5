package orchestrator

// Phase is where the upload coordinator is in the pipeline.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseUploading  Phase = "uploading"
	PhaseUploaded   Phase = "uploaded"
	PhaseProcessing Phase = "processing"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// Uploading -> Processing is the single-call path, where there is no separate upload step.
var transitions = map[Phase][]Phase{
	PhaseIdle:       {PhaseUploading},
	PhaseUploading:  {PhaseUploaded, PhaseProcessing, PhaseFailed},
	PhaseUploaded:   {PhaseProcessing, PhaseFailed},
	PhaseProcessing: {PhaseCompleted, PhaseFailed},
	PhaseCompleted:  {PhaseIdle},
	PhaseFailed:     {PhaseIdle},
}

// CanTransition reports whether from -> to is a legal step.
func CanTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether p ends a pipeline run.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}
