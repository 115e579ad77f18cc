package score

import "testing"

func TestMaturity(t *testing.T) {
	tests := []struct {
		name      string
		score     int
		maxScore  int
		wantLevel string
	}{
		{name: "zero max saturates to lowest tier", score: 10, maxScore: 0, wantLevel: "Crítico"},
		{name: "zero of zero", score: 0, maxScore: 0, wantLevel: "Crítico"},
		{name: "0%", score: 0, maxScore: 100, wantLevel: "Crítico"},
		{name: "30% inclusive", score: 30, maxScore: 100, wantLevel: "Crítico"},
		{name: "31%", score: 31, maxScore: 100, wantLevel: "Precário"},
		{name: "50% inclusive", score: 50, maxScore: 100, wantLevel: "Precário"},
		{name: "51%", score: 51, maxScore: 100, wantLevel: "Mediano"},
		{name: "70% inclusive", score: 70, maxScore: 100, wantLevel: "Mediano"},
		{name: "71%", score: 71, maxScore: 100, wantLevel: "Avançado"},
		{name: "100%", score: 100, maxScore: 100, wantLevel: "Avançado"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Maturity(tt.score, tt.maxScore); got.Level != tt.wantLevel {
				t.Errorf("Maturity(%d, %d) = %s, want %s", tt.score, tt.maxScore, got.Level, tt.wantLevel)
			}
		})
	}
}

func TestMaturityForPercentage(t *testing.T) {
	tests := []struct {
		name       string
		percentage float64
		wantLevel  string
	}{
		{name: "fraction above lowest boundary", percentage: 30.1, wantLevel: "Precário"},
		{name: "fraction above middle boundary", percentage: 50.5, wantLevel: "Mediano"},
		{name: "fraction above upper boundary", percentage: 70.9, wantLevel: "Avançado"},
		{name: "exact boundary stays in tier", percentage: 70.0, wantLevel: "Mediano"},
		{name: "two thirds", percentage: 200.0 / 3, wantLevel: "Mediano"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaturityForPercentage(tt.percentage); got.Level != tt.wantLevel {
				t.Errorf("MaturityForPercentage(%v) = %s, want %s", tt.percentage, got.Level, tt.wantLevel)
			}
		})
	}
}

func TestMaturityLevelsOrdered(t *testing.T) {
	levels := MaturityLevels()
	if len(levels) != 4 {
		t.Fatalf("expected 4 tiers, got %d", len(levels))
	}
	want := []string{"Crítico", "Precário", "Mediano", "Avançado"}
	for i, lvl := range levels {
		if lvl.Level != want[i] {
			t.Errorf("tier %d = %s, want %s", i, lvl.Level, want[i])
		}
	}
}
