package cascade

// StepEvent is emitted synchronously after each attempted step.
type StepEvent struct {
	RequestID string  `json:"request_id"`
	ChainID   string  `json:"chain_id"`
	Step      int     `json:"step"`
	Tier      string  `json:"tier"`
	Quality   float64 `json:"quality"`
	Escalated bool    `json:"escalated"`
}

// CompleteEvent is emitted once per Execute call, after a response is
// accepted.
type CompleteEvent struct {
	RequestID  string  `json:"request_id"`
	ChainID    string  `json:"chain_id"`
	FinalTier  string  `json:"final_tier"`
	TotalSteps int     `json:"total_steps"`
	Cost       float64 `json:"cost"`
}

// Listener observes cascade execution. Calls happen synchronously, in
// order, on the executing goroutine.
type Listener interface {
	StepCompleted(StepEvent)
	CascadeCompleted(CompleteEvent)
}

// ListenerFuncs adapts plain functions to the Listener interface. Nil
// fields are skipped.
type ListenerFuncs struct {
	OnStep     func(StepEvent)
	OnComplete func(CompleteEvent)
}

// StepCompleted invokes OnStep if set.
func (l ListenerFuncs) StepCompleted(e StepEvent) {
	if l.OnStep != nil {
		l.OnStep(e)
	}
}

// CascadeCompleted invokes OnComplete if set.
func (l ListenerFuncs) CascadeCompleted(e CompleteEvent) {
	if l.OnComplete != nil {
		l.OnComplete(e)
	}
}
