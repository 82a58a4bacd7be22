package kafka

const (
	TopicHoldCreated   = "reservation.hold.created"
	TopicHoldCancelled = "reservation.hold.cancelled"
	TopicHoldCommitted = "reservation.hold.committed"
	TopicCommitFailed  = "reservation.commit.failed"

	TopicPaymentCompleted = "payment.completed"
	TopicPaymentFailed    = "payment.failed"
)
