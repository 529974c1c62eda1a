package symsearch

import "github.com/google/uuid"

// Default bucket-merging limits used by the optimal-operator extractors.
const (
	DefaultMergeMaxSets  = 10000
	DefaultMergeMaxNodes = 1000000
)

// Options defines parameters shared by closed lists and the search driver.
type Options struct {
	Logger  *Logger
	Metrics MetricsCollector

	// MergeMaxSets and MergeMaxNodes bound bucket coalescing during
	// optimal-operator extraction.
	MergeMaxSets  int
	MergeMaxNodes int

	// RunID tags log lines of one search. A random id is used when empty.
	RunID string
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector MetricsCollector) Option {
	return func(options *Options) { options.Metrics = collector }
}

// WithMergeLimits bounds how many sets a frontier bucket may hold and how
// large a merged set may grow during optimal-operator extraction.
func WithMergeLimits(maxSets, maxNodes int) Option {
	return func(options *Options) {
		options.MergeMaxSets = maxSets
		options.MergeMaxNodes = maxNodes
	}
}

// WithRunID sets the id attached to log lines.
func WithRunID(id string) Option {
	return func(options *Options) { options.RunID = id }
}

func buildOptions(opts []Option) Options {
	searchOptions := Options{
		MergeMaxSets:  DefaultMergeMaxSets,
		MergeMaxNodes: DefaultMergeMaxNodes,
	}
	for _, option := range opts {
		option(&searchOptions)
	}
	if searchOptions.Logger == nil {
		searchOptions.Logger = NoopLogger()
	}
	if searchOptions.Metrics == nil {
		searchOptions.Metrics = NoopMetricsCollector{}
	}
	if searchOptions.RunID == "" {
		searchOptions.RunID = uuid.NewString()
	}
	return searchOptions
}
