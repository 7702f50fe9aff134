package scoring

// Config holds the tunable thresholds of the engine. Values are empirical
// defaults and are expected to be overridden from configuration.
type Config struct {
	StraightLineThreshold float64
	MinSampleForVariance  int
	RushedThresholdMs     float64
	TieEpsilon            float64
	SecondaryBand         float64
	MaxSecondary          int
	BlindspotMinGap       float64
	BlindspotTopN         int
}

const (
	DefaultStraightLineThreshold = 0.3
	DefaultMinSampleForVariance  = 8
	DefaultRushedThresholdMs     = 1500
	DefaultTieEpsilon            = 0.01
	DefaultSecondaryBand         = 10
	DefaultMaxSecondary          = 3
	DefaultBlindspotMinGap       = 8
	DefaultBlindspotTopN         = 3
)

func DefaultConfig() Config {
	return Config{
		StraightLineThreshold: DefaultStraightLineThreshold,
		MinSampleForVariance:  DefaultMinSampleForVariance,
		RushedThresholdMs:     DefaultRushedThresholdMs,
		TieEpsilon:            DefaultTieEpsilon,
		SecondaryBand:         DefaultSecondaryBand,
		MaxSecondary:          DefaultMaxSecondary,
		BlindspotMinGap:       DefaultBlindspotMinGap,
		BlindspotTopN:         DefaultBlindspotTopN,
	}
}
