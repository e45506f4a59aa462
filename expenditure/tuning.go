package expenditure

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Physical constants. These are not tunable.
const (
	// EnergyDensityKcalPerKG is the energy content of one kilogram of body
	// mass change.
	EnergyDensityKcalPerKG = 7700.0
	// MinExpenditureKcal floors both the estimate and the daily target.
	MinExpenditureKcal = 1000
	// DefaultLookbackWeeks is the window used when the caller passes <= 0.
	DefaultLookbackWeeks = 3
	// MaxLookbackWeeks bounds the window so a request cannot pull years of rows.
	MaxLookbackWeeks = 26
)

// Default tuning values. The outlier threshold and smoothing behaviour were
// fitted to the behavioural tests, not derived; override them through a
// tuning file rather than editing these.
const (
	DefaultMinWeightObservations = 2
	DefaultMinIntakeObservations = 7
	DefaultActivityFactor        = 1.45

	DefaultOutlierAbsKG       = 1.5
	DefaultOutlierSDMultiple  = 2.5
	DefaultOutlierMinKG       = 0.5
	DefaultRecencyHalfLifeDay = 14.0
	DefaultMinTrendShare      = 0.5

	DefaultMaintenanceBandKcal = 150.0

	DefaultHighAdherence       = 0.8
	DefaultMediumAdherence     = 0.5
	DefaultHighCleanWeightDays = 8
	DefaultMedCleanWeightDays  = 3
	DefaultStableResidualKG    = 0.6
	DefaultNoisyResidualKG     = 1.2
	DefaultMaxOutlierRatio     = 0.15

	DefaultProteinGPerKG       = 2.0
	DefaultMaxProteinShare     = 0.6
	DefaultFatFloorGPerKG      = 0.6
	DefaultFatShareOfRemaining = 0.3
)

// Tuning holds every adjustable parameter of the engine. The yaml tags name
// the keys accepted by LoadTuning.
type Tuning struct {
	MinWeightObservations int     `yaml:"min_weight_observations"`
	MinIntakeObservations int     `yaml:"min_intake_observations"`
	DefaultActivityFactor float64 `yaml:"default_activity_factor"`

	// Outlier rejection: a day is an outlier when its deviation from the
	// reference trend exceeds OutlierAbsKG, or exceeds OutlierSDMultiple
	// standard deviations while also being larger than OutlierMinKG.
	OutlierAbsKG      float64 `yaml:"outlier_abs_kg"`
	OutlierSDMultiple float64 `yaml:"outlier_sd_multiple"`
	OutlierMinKG      float64 `yaml:"outlier_min_kg"`

	// RecencyHalfLifeDays is the age in days at which a point's regression
	// weight halves.
	RecencyHalfLifeDays float64 `yaml:"recency_half_life_days"`
	// MinTrendShare is the fraction of the trend-implied imbalance that must
	// survive blending with the prior.
	MinTrendShare float64 `yaml:"min_trend_share"`

	MaintenanceBandKcal float64 `yaml:"maintenance_band_kcal"`

	HighAdherence       float64 `yaml:"high_adherence"`
	MediumAdherence     float64 `yaml:"medium_adherence"`
	HighCleanWeightDays int     `yaml:"high_clean_weight_days"`
	MedCleanWeightDays  int     `yaml:"medium_clean_weight_days"`
	StableResidualKG    float64 `yaml:"stable_residual_kg"`
	NoisyResidualKG     float64 `yaml:"noisy_residual_kg"`
	MaxOutlierRatio     float64 `yaml:"max_outlier_ratio"`

	ProteinGPerKG       float64 `yaml:"protein_g_per_kg"`
	MaxProteinShare     float64 `yaml:"max_protein_share"`
	FatFloorGPerKG      float64 `yaml:"fat_floor_g_per_kg"`
	FatShareOfRemaining float64 `yaml:"fat_share_of_remaining"`
}

// DefaultTuning returns the built-in parameter set.
func DefaultTuning() Tuning {
	return Tuning{
		MinWeightObservations: DefaultMinWeightObservations,
		MinIntakeObservations: DefaultMinIntakeObservations,
		DefaultActivityFactor: DefaultActivityFactor,
		OutlierAbsKG:          DefaultOutlierAbsKG,
		OutlierSDMultiple:     DefaultOutlierSDMultiple,
		OutlierMinKG:          DefaultOutlierMinKG,
		RecencyHalfLifeDays:   DefaultRecencyHalfLifeDay,
		MinTrendShare:         DefaultMinTrendShare,
		MaintenanceBandKcal:   DefaultMaintenanceBandKcal,
		HighAdherence:         DefaultHighAdherence,
		MediumAdherence:       DefaultMediumAdherence,
		HighCleanWeightDays:   DefaultHighCleanWeightDays,
		MedCleanWeightDays:    DefaultMedCleanWeightDays,
		StableResidualKG:      DefaultStableResidualKG,
		NoisyResidualKG:       DefaultNoisyResidualKG,
		MaxOutlierRatio:       DefaultMaxOutlierRatio,
		ProteinGPerKG:         DefaultProteinGPerKG,
		MaxProteinShare:       DefaultMaxProteinShare,
		FatFloorGPerKG:        DefaultFatFloorGPerKG,
		FatShareOfRemaining:   DefaultFatShareOfRemaining,
	}
}

// LoadTuning reads a YAML file and overlays it on DefaultTuning. Keys left
// out of the file keep their default. An empty path returns the defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.UnmarshalStrict(b, &t); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects parameter sets the stages cannot work with.
func (t Tuning) Validate() error {
	switch {
	case t.MinWeightObservations < 2:
		return fmt.Errorf("min_weight_observations must be at least 2, got %d", t.MinWeightObservations)
	case t.MinIntakeObservations < 1:
		return fmt.Errorf("min_intake_observations must be at least 1, got %d", t.MinIntakeObservations)
	case t.DefaultActivityFactor < 1 || t.DefaultActivityFactor > 2.5:
		return fmt.Errorf("default_activity_factor must be in [1, 2.5], got %g", t.DefaultActivityFactor)
	case t.OutlierAbsKG <= 0 || t.OutlierSDMultiple <= 0 || t.OutlierMinKG < 0:
		return fmt.Errorf("outlier thresholds must be positive")
	case t.RecencyHalfLifeDays <= 0:
		return fmt.Errorf("recency_half_life_days must be positive, got %g", t.RecencyHalfLifeDays)
	case t.MinTrendShare < 0 || t.MinTrendShare > 1:
		return fmt.Errorf("min_trend_share must be in [0, 1], got %g", t.MinTrendShare)
	case t.MaintenanceBandKcal < 0:
		return fmt.Errorf("maintenance_band_kcal must not be negative")
	case t.MediumAdherence > t.HighAdherence:
		return fmt.Errorf("medium_adherence must not exceed high_adherence")
	case t.MedCleanWeightDays > t.HighCleanWeightDays:
		return fmt.Errorf("medium_clean_weight_days must not exceed high_clean_weight_days")
	case t.StableResidualKG > t.NoisyResidualKG:
		return fmt.Errorf("stable_residual_kg must not exceed noisy_residual_kg")
	case t.MaxProteinShare <= 0 || t.MaxProteinShare > 1:
		return fmt.Errorf("max_protein_share must be in (0, 1], got %g", t.MaxProteinShare)
	case t.ProteinGPerKG < 0 || t.FatFloorGPerKG < 0:
		return fmt.Errorf("per-kg macro factors must not be negative")
	case t.FatShareOfRemaining < 0 || t.FatShareOfRemaining > 1:
		return fmt.Errorf("fat_share_of_remaining must be in [0, 1], got %g", t.FatShareOfRemaining)
	}
	return nil
}
