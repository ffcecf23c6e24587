package assessment

// FlowPolicy controls when a flow may (or must) request a diagnosis. The
// thresholds differ between entry points in the product and are kept
// configurable rather than unified: the server enforces only its own hard
// floor, and each client flow layers a stricter one on top.
type FlowPolicy struct {
	// MinMessages is the transcript length required before the flow offers
	// the diagnosis action.
	MinMessages int
	// MaxQuestions is the assistant-question count that triggers automatic
	// diagnosis generation. Zero disables auto-invocation.
	MaxQuestions int
}

// ConsultationFlow is the body-map driven interview: three full exchanges
// before diagnosis is offered, auto-generated after six questions.
var ConsultationFlow = FlowPolicy{MinMessages: 6, MaxQuestions: 6}

// QuickChatFlow is the free-text flow: two exchanges, no body-part context.
var QuickChatFlow = FlowPolicy{MinMessages: 4, MaxQuestions: 6}

// ReadyForDiagnosis reports whether the transcript is long enough for this
// flow to request a diagnosis.
func (p FlowPolicy) ReadyForDiagnosis(messageCount int) bool {
	return messageCount >= p.MinMessages
}

// ShouldAutoDiagnose reports whether the flow must now generate the
// diagnosis without waiting for the user.
func (p FlowPolicy) ShouldAutoDiagnose(questionCount int) bool {
	return p.MaxQuestions > 0 && questionCount >= p.MaxQuestions
}
