package models

// Thresholds gates short-circuit rules and blocking/splitting behavior.
type Thresholds struct {
	MinPair        float64 `yaml:"minPair" json:"minPair"`
	MinInternal    float64 `yaml:"minInternal" json:"minInternal"`
	BlockChunkSize int     `yaml:"blockChunkSize" json:"blockChunkSize"`
}

// FinalScoreWeights weights the nine breakdown components of the
// weighted-sum fallback (C3 step 4).
type FinalScoreWeights struct {
	FirstNameScore    float64 `yaml:"firstNameScore" json:"firstNameScore"`
	FamilyNameScore   float64 `yaml:"familyNameScore" json:"familyNameScore"`
	AdvancedNameScore float64 `yaml:"advancedNameScore" json:"advancedNameScore"`
	TokenReorderScore float64 `yaml:"tokenReorderScore" json:"tokenReorderScore"`
	HusbandScore      float64 `yaml:"husbandScore" json:"husbandScore"`
	IDScore           float64 `yaml:"idScore" json:"idScore"`
	PhoneScore        float64 `yaml:"phoneScore" json:"phoneScore"`
	ChildrenScore     float64 `yaml:"childrenScore" json:"childrenScore"`
	LocationScore     float64 `yaml:"locationScore" json:"locationScore"`
}

// Rules toggles optional domain rules.
type Rules struct {
	EnablePolygamyRules bool `yaml:"enablePolygamyRules" json:"enablePolygamyRules"`
}

// Configuration is the fully-resolved set of tunables used internally
// by the engine. Every field is always populated — use
// DefaultConfiguration or ConfigOptions.Resolve to build one.
type Configuration struct {
	Thresholds        Thresholds        `yaml:"thresholds" json:"thresholds"`
	FinalScoreWeights FinalScoreWeights `yaml:"finalScoreWeights" json:"finalScoreWeights"`
	Rules             Rules             `yaml:"rules" json:"rules"`
}

// DefaultConfiguration returns the constant default configuration.
func DefaultConfiguration() Configuration {
	return Configuration{
		Thresholds: Thresholds{
			MinPair:        0.62,
			MinInternal:    0.50,
			BlockChunkSize: 3000,
		},
		FinalScoreWeights: FinalScoreWeights{
			FirstNameScore:    0.15,
			FamilyNameScore:   0.25,
			AdvancedNameScore: 0.12,
			TokenReorderScore: 0.10,
			HusbandScore:      0.12,
			IDScore:           0.08,
			PhoneScore:        0.05,
			ChildrenScore:     0.06,
			LocationScore:     0.04,
		},
		Rules: Rules{
			EnablePolygamyRules: true,
		},
	}
}

// ConfigOptions is the wire shape accepted from the host: every field
// is a pointer so "not present on the wire" is distinguishable from
// "explicitly set to zero/false". A nil *ConfigOptions resolves to
// DefaultConfiguration unchanged.
type ConfigOptions struct {
	Thresholds        *ThresholdOptions        `yaml:"thresholds" json:"thresholds"`
	FinalScoreWeights *FinalScoreWeightOptions `yaml:"finalScoreWeights" json:"finalScoreWeights"`
	Rules             *RuleOptions             `yaml:"rules" json:"rules"`
}

type ThresholdOptions struct {
	MinPair        *float64 `yaml:"minPair" json:"minPair"`
	MinInternal    *float64 `yaml:"minInternal" json:"minInternal"`
	BlockChunkSize *int     `yaml:"blockChunkSize" json:"blockChunkSize"`
}

type FinalScoreWeightOptions struct {
	FirstNameScore    *float64 `yaml:"firstNameScore" json:"firstNameScore"`
	FamilyNameScore   *float64 `yaml:"familyNameScore" json:"familyNameScore"`
	AdvancedNameScore *float64 `yaml:"advancedNameScore" json:"advancedNameScore"`
	TokenReorderScore *float64 `yaml:"tokenReorderScore" json:"tokenReorderScore"`
	HusbandScore      *float64 `yaml:"husbandScore" json:"husbandScore"`
	IDScore           *float64 `yaml:"idScore" json:"idScore"`
	PhoneScore        *float64 `yaml:"phoneScore" json:"phoneScore"`
	ChildrenScore     *float64 `yaml:"childrenScore" json:"childrenScore"`
	LocationScore     *float64 `yaml:"locationScore" json:"locationScore"`
}

type RuleOptions struct {
	EnablePolygamyRules *bool `yaml:"enablePolygamyRules" json:"enablePolygamyRules"`
}

// Resolve layers non-nil fields of opts on top of DefaultConfiguration.
// A nil receiver resolves to the default configuration unchanged.
func (opts *ConfigOptions) Resolve() Configuration {
	cfg := DefaultConfiguration()
	if opts == nil {
		return cfg
	}

	if t := opts.Thresholds; t != nil {
		if t.MinPair != nil {
			cfg.Thresholds.MinPair = *t.MinPair
		}
		if t.MinInternal != nil {
			cfg.Thresholds.MinInternal = *t.MinInternal
		}
		if t.BlockChunkSize != nil {
			cfg.Thresholds.BlockChunkSize = *t.BlockChunkSize
		}
	}

	if w := opts.FinalScoreWeights; w != nil {
		dst := &cfg.FinalScoreWeights
		setF(&dst.FirstNameScore, w.FirstNameScore)
		setF(&dst.FamilyNameScore, w.FamilyNameScore)
		setF(&dst.AdvancedNameScore, w.AdvancedNameScore)
		setF(&dst.TokenReorderScore, w.TokenReorderScore)
		setF(&dst.HusbandScore, w.HusbandScore)
		setF(&dst.IDScore, w.IDScore)
		setF(&dst.PhoneScore, w.PhoneScore)
		setF(&dst.ChildrenScore, w.ChildrenScore)
		setF(&dst.LocationScore, w.LocationScore)
	}

	if r := opts.Rules; r != nil && r.EnablePolygamyRules != nil {
		cfg.Rules.EnablePolygamyRules = *r.EnablePolygamyRules
	}

	return cfg
}

func setF(field *float64, override *float64) {
	if override != nil {
		*field = *override
	}
}
