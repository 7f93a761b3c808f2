package races

const (
	TierElite        = "elite"
	TierAdvanced     = "advanced"
	TierIntermediate = "intermediate"
	TierBeginner     = "beginner"
	TierDeveloping   = "developing"
)

// Tiers from best to worst.
var Tiers = []string{TierElite, TierAdvanced, TierIntermediate, TierBeginner}

var Genders = []string{"male", "female"}

type SkillBenchmark struct {
	SegmentType string `json:"segment_type"`
	Gender      string `json:"gender"`
	Tier        string `json:"tier"`
	MaxSeconds  int    `json:"max_seconds"`
}

type Comparison struct {
	SegmentType string           `json:"segment_type"`
	Gender      string           `json:"gender"`
	TimeSeconds int              `json:"time_seconds"`
	Time        string           `json:"time"`
	Tier        string           `json:"tier"`
	NextTier    *string          `json:"next_tier,omitempty"`
	GapSeconds  int              `json:"gap_seconds"`
	Thresholds  []SkillBenchmark `json:"thresholds"`
}

// Compare places a segment time into the first tier, best to worst, whose maximum it meets.
// A time slower than every threshold is "developing". The gap is measured to the maximum of
// the next better tier and is 0 at the top tier.
func Compare(segmentType, gender string, timeSeconds int, benchmarks []SkillBenchmark) Comparison {
	ordered := orderByTier(benchmarks)
	c := Comparison{
		SegmentType: segmentType,
		Gender:      gender,
		TimeSeconds: timeSeconds,
		Time:        FormatSeconds(timeSeconds),
		Tier:        TierDeveloping,
		Thresholds:  ordered,
	}

	idx := len(ordered)
	for i, b := range ordered {
		if timeSeconds <= b.MaxSeconds {
			idx = i
			break
		}
	}
	if idx < len(ordered) {
		c.Tier = ordered[idx].Tier
	}
	if idx > 0 {
		better := ordered[idx-1]
		c.NextTier = &better.Tier
		c.GapSeconds = timeSeconds - better.MaxSeconds
	}

	return c
}

func orderByTier(benchmarks []SkillBenchmark) []SkillBenchmark {
	ordered := make([]SkillBenchmark, 0, len(benchmarks))
	for _, tier := range Tiers {
		for _, b := range benchmarks {
			if b.Tier == tier {
				ordered = append(ordered, b)
				break
			}
		}
	}
	return ordered
}
