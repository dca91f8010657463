package domain

import "time"

// EntryType names an entry signal.
type EntryType string

const (
	BullishEntry EntryType = "bullish_entry"
	BearishEntry EntryType = "bearish_entry"
)

// ExitType names an exit signal.
type ExitType string

const (
	ResistanceExit ExitType = "resistance_exit"
	SupportExit    ExitType = "support_exit"
)

// Entry is a point where a position would be opened.
type Entry struct {
	Type  EntryType `json:"type"`
	Price float64   `json:"price"`
	Time  time.Time `json:"time"`
}

// Exit is a point where a position would be closed.
type Exit struct {
	Type  ExitType  `json:"type"`
	Price float64   `json:"price"`
	Time  time.Time `json:"time"`
}

// Trade pairs an entry with an exit.
type Trade struct {
	Entry  Entry   `json:"entry"`
	Exit   Exit    `json:"exit"`
	Profit float64 `json:"profit"`
}

// Signals is the output of the signal generator.
type Signals struct {
	Entries []Entry `json:"entries"`
	Exits   []Exit  `json:"exits"`
	Trades  []Trade `json:"trades"`
}

// TradeRequest is the input of trade validation and sizing. A nil field is
// treated as absent.
type TradeRequest struct {
	Entry      *Entry
	Exit       *Exit
	RiskReward *RiskReward
}

// ExecutionStatus is the outcome of a sizing calculation.
type ExecutionStatus string

const StatusExecuted ExecutionStatus = "executed"

// ExecutionResult is a validated and sized trade. Nothing is sent to a broker.
type ExecutionResult struct {
	Status       ExecutionStatus `json:"status"`
	Entry        Entry           `json:"entry"`
	Exit         Exit            `json:"exit"`
	Profit       float64         `json:"profit"`
	PositionSize float64         `json:"position_size"`
	RiskReward   RiskReward      `json:"risk_reward"`
}
