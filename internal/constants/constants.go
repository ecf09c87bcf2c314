package constants

const (
	CostIndexCacheHash = "cost_index" // CacheBuilder adds the colon
	CostIndexCacheKey  = "series"
)

const (
	JobQueueReconcile   = "QueueReconcile"
	JobCostIndexRefresh = "CostIndexCacheRefresh"
)
