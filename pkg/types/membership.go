package types

// MembershipChangeReason tags every ledger mutation recorded in the membership log.
type MembershipChangeReason string

const (
	MembershipChangeReasonCreated     MembershipChangeReason = "created"
	MembershipChangeReasonChanged     MembershipChangeReason = "changed"
	MembershipChangeReasonCanceled    MembershipChangeReason = "canceled"
	MembershipChangeReasonCancelMoved MembershipChangeReason = "cancel_moved"
)

type CrawlStatus string

const (
	CrawlStatusProcessed CrawlStatus = "processed"
	CrawlStatusSkipped   CrawlStatus = "skipped"
	CrawlStatusFailed    CrawlStatus = "failed"
)

// HubSeed is a hub declared in configuration and created at startup.
type HubSeed struct {
	Name     string `json:"name" mapstructure:"name"`
	Location string `json:"location" mapstructure:"location"`
}
