package consts

const (
	EdgeCountKey          = "engagement:count:"
	NotificationUnreadKey = "notification:unread:"
)

const (
	MomentSweepLock      = "lock:moment:sweep"
	CounterReconcileLock = "lock:counter:reconcile"
)
