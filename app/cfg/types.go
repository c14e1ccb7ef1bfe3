package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	SourcesDir            string
	Port                  string
	BaseUrl               string
	WorkerCount           int
	CollectionInterval    int
	MaxConcurrentRequests int
	RequestTimeout        int
	APIAccessKey          string

	// Data quality configuration
	AllowedDomains   []string
	ExpectedKeywords []string
	MinContentLength int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// RateLimitCapacity returns the token bucket capacity shared by all
// network adapters, derived from the concurrency budget.
func (c *Cfg) RateLimitCapacity() float64 {
	return float64(c.MaxConcurrentRequests)
}

// RateLimitRefillPerSecond spreads the concurrency budget over one
// collection interval.
func (c *Cfg) RateLimitRefillPerSecond() float64 {
	if c.CollectionInterval <= 0 {
		return float64(c.MaxConcurrentRequests)
	}
	return float64(c.MaxConcurrentRequests) / float64(c.CollectionInterval)
}
