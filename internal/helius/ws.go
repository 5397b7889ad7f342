package helius

// AccountStream is a live account-change subscription for one wallet.
type AccountStream interface {
	// Notifications returns the channel of account-change notifications.
	// The channel is closed when the underlying transport fails or the
	// stream is closed; Err reports the cause afterwards.
	Notifications() <-chan AccountNotification

	// Err returns the transport error that ended the stream, if any.
	Err() error

	// Close closes the stream. Safe to call more than once.
	Close() error
}

// AccountNotification is one accountNotification message. The account value
// itself is not inspected by this tool; the notification only signals that
// the watched account changed.
type AccountNotification struct {
	Slot     int64
	Lamports uint64
}
