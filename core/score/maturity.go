package score

// MaturityLevel is one of the four ordered maturity tiers with its display metadata.
type MaturityLevel struct {
	Level string `json:"level"`
	Range string `json:"range"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var maturityLevels = []MaturityLevel{
	{Level: "Crítico", Range: "0 - 30%", Icon: "🔴", Color: "#EF4444"},
	{Level: "Precário", Range: "31 - 50%", Icon: "🟠", Color: "#F97316"},
	{Level: "Mediano", Range: "51 - 70%", Icon: "🟡", Color: "#EAB308"},
	{Level: "Avançado", Range: "71 - 100%", Icon: "🟢", Color: "#22C55E"},
}

// MaturityLevels lists the four tiers in ascending order.
func MaturityLevels() []MaturityLevel {
	levels := make([]MaturityLevel, len(maturityLevels))
	copy(levels, maturityLevels)
	return levels
}

// Maturity classifies a score ratio into its maturity tier.
// maxScore of 0 saturates to the lowest tier rather than dividing.
func Maturity(score, maxScore int) MaturityLevel {
	if maxScore == 0 {
		return maturityLevels[0]
	}
	return MaturityForPercentage(float64(score) / float64(maxScore) * 100)
}

// MaturityForPercentage classifies an already-computed percentage.
// Fractional values above a boundary belong to the next tier.
func MaturityForPercentage(percentage float64) MaturityLevel {
	switch {
	case percentage <= 30:
		return maturityLevels[0]
	case percentage <= 50:
		return maturityLevels[1]
	case percentage <= 70:
		return maturityLevels[2]
	default:
		return maturityLevels[3]
	}
}
