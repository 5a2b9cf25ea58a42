package model

// FanoutEvent is one decoded game message as it leaves the bridge.
type FanoutEvent struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Payload     map[string]any `json:"payload"`
	PublishedAt int64          `json:"published_at"`
}

// FanoutStatus is a point-in-time view of the publisher counters.
// Before the first successful publish LastPublish and SecondsSinceLast are nil.
type FanoutStatus struct {
	Streaming        bool    `json:"streaming"`
	LastPublish      *string `json:"lastPublishISO8601"`
	SecondsSinceLast *int64  `json:"secondsSinceLast"`
	TotalMessages    uint64  `json:"totalMessages"`
	Errors           uint64  `json:"errors"`
}
