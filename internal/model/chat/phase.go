package chat

// Phase is the state of a chat page's send action.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseAggregating    Phase = "aggregating"
	PhaseFormatting     Phase = "formatting"
	PhaseAwaitingModel  Phase = "awaiting_model"
	PhaseAppendingReply Phase = "appending_reply"
	PhaseBlocked        Phase = "blocked"
)

// Busy reports whether a send is in flight.
func (p Phase) Busy() bool {
	switch p {
	case PhaseAggregating, PhaseFormatting, PhaseAwaitingModel, PhaseAppendingReply:
		return true
	default:
		return false
	}
}

// Status is the externally visible state of a chat page.
type Status struct {
	Phase         Phase `json:"phase"`
	Loading       bool  `json:"loading"`
	DailyCount    int   `json:"dailyCount"`
	DailyQuota    int   `json:"dailyQuota"`
	UpgradePrompt bool  `json:"upgradePrompt"`
	MessageCount  int   `json:"messageCount"`
}
