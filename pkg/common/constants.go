package common

const (
	RedisStreamWatchlistReconcile = "watchlist.sync.reconcile"

	RedisStreamGroup    = "sync-group"
	RedisStreamConsumer = "sync-consumer"

	// RedisKeyReconcilePending marks a user that already has a reconcile task queued.
	RedisKeyReconcilePending = "watchlist:reconcile:pending:%s"
	// RedisKeySession maps a session id issued by the identity provider to a user id.
	RedisKeySession = "session:%s"

	// FilterPolicyNoMatch is pushed when no ticker should be delivered; the
	// subscription filter policy cannot be an empty list.
	FilterPolicyNoMatch = "__NO_MATCH__"
	// FilterPolicyAttribute is the message attribute the filter policy matches on.
	FilterPolicyAttribute = "ticker"
)
