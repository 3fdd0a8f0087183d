package medical

import "testing"

func TestEvaluateUnknownParamsIgnored(t *testing.T) {
	issues, outOfRange := Evaluate(map[string]float64{
		"Colesterol Total": 900,
		"Desconocido":      -5,
	})
	if len(issues) != 0 || outOfRange {
		t.Fatalf("expected no findings for unknown parameters, got %v", issues)
	}
}

func TestEvaluateBoundariesInclusive(t *testing.T) {
	cases := []struct {
		name  string
		param string
		value float64
	}{
		{"glicemia lower bound", "Glicemia Basal", 75},
		{"glicemia upper bound", "Glicemia Basal", 100},
		{"inr lower bound", "INR", 0.8},
		{"plaquetas upper bound", "Recuento de Plaquetas", 400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			issues, outOfRange := Evaluate(map[string]float64{tc.param: tc.value})
			if len(issues) != 0 || outOfRange {
				t.Fatalf("boundary value %v for %s should be in range, got %v", tc.value, tc.param, issues)
			}
		})
	}
}

func TestEvaluateOutOfRange(t *testing.T) {
	issues, outOfRange := Evaluate(map[string]float64{"Glicemia Basal": 120})
	if !outOfRange {
		t.Fatalf("expected out-of-range result")
	}
	if len(issues) != 1 || issues[0] != "Glicemia Basal fuera de rango: 120" {
		t.Fatalf("unexpected findings: %v", issues)
	}
}

func TestEvaluateMixedResultsSortedOutput(t *testing.T) {
	issues, outOfRange := Evaluate(map[string]float64{
		"VHS (Velocidad de sedimentación globular)": 20,
		"Glicemia Basal": 130,
		"Hemoglobina":    13,
	})
	if !outOfRange {
		t.Fatalf("expected out-of-range result")
	}
	want := []string{
		"Glicemia Basal fuera de rango: 130",
		"VHS (Velocidad de sedimentación globular) fuera de rango: 20",
	}
	if len(issues) != len(want) {
		t.Fatalf("expected %d findings, got %v", len(want), issues)
	}
	for i := range want {
		if issues[i] != want[i] {
			t.Fatalf("finding %d: want %q, got %q", i, want[i], issues[i])
		}
	}
}

func TestEvaluateHealthyResults(t *testing.T) {
	issues, outOfRange := Evaluate(map[string]float64{
		"Glicemia Basal": 90,
		"Hemoglobina":    13,
	})
	if len(issues) != 0 || outOfRange {
		t.Fatalf("expected healthy results, got %v", issues)
	}
}
