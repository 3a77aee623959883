package rules

import (
	"fmt"
	"os"

	"github.com/go-yaml/yaml"
)

// LoadYAML reads a YAML overlay from path on top of Default and validates it.
// Keys absent from the document keep their default values; a present map
// replaces the default map entry by entry.
func LoadYAML(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML overlays data on top of Default and validates the result.
func ParseYAML(data []byte) (Rules, error) {
	base := Default()
	var overlay Rules
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	merged := merge(base, overlay)
	if err := merged.Validate(); err != nil {
		return Rules{}, fmt.Errorf("validate rules: %w", err)
	}
	return merged, nil
}

func merge(base, overlay Rules) Rules {
	setInt := func(dst *int, value int) {
		if value != 0 {
			*dst = value
		}
	}
	setInt(&base.StartingApproachDots, overlay.StartingApproachDots)
	setInt(&base.MaxApproachDots, overlay.MaxApproachDots)
	setInt(&base.DefaultLoadLimit, overlay.DefaultLoadLimit)
	setInt(&base.MaxLoadLimit, overlay.MaxLoadLimit)
	setInt(&base.MinMomentum, overlay.MinMomentum)
	setInt(&base.MaxMomentum, overlay.MaxMomentum)
	setInt(&base.StartMomentum, overlay.StartMomentum)
	setInt(&base.RallyMaxMomentum, overlay.RallyMaxMomentum)
	setInt(&base.HarmClockSize, overlay.HarmClockSize)
	setInt(&base.MaxHarmClocks, overlay.MaxHarmClocks)
	setInt(&base.AddictionClockSize, overlay.AddictionClockSize)
	setInt(&base.ResetAddictionReduce, overlay.ResetAddictionReduce)
	setInt(&base.ZeroDotsDicePool, overlay.ZeroDotsDicePool)
	setInt(&base.MaxDicePool, overlay.MaxDicePool)
	if len(overlay.ClockSizes) > 0 {
		base.ClockSizes = append([]int(nil), overlay.ClockSizes...)
	}
	for tier, cost := range overlay.TierCost {
		base.TierCost[tier] = cost
	}
	for position, gain := range overlay.MomentumGain {
		base.MomentumGain[position] = gain
	}
	for position, row := range overlay.Harm {
		if base.Harm[position] == nil {
			base.Harm[position] = make(map[Effect]int, len(row))
		}
		for effect, value := range row {
			base.Harm[position][effect] = value
		}
	}
	return base
}
