// Package medical evaluates laboratory results against fixed reference ranges.
package medical

import (
	"fmt"
	"sort"
)

// Range is an inclusive healthy interval for a clinical parameter.
type Range struct {
	Min float64
	Max float64
}

// Ranges maps each supported clinical parameter to its reference interval.
// Parameters not listed here are ignored during evaluation.
var Ranges = map[string]Range{
	"Porcentaje (Protrombina)":                  {70, 100},
	"INR":                                       {0.8, 1.2},
	"TTPK (Tiempo de Tromboplastina)":           {25, 40},
	"Glicemia Basal":                            {75, 100},
	"Uremia":                                    {0, 50},
	"Recuento de Eritrocitos":                   {3.9, 5.3},
	"Hemoglobina":                               {11.5, 14.5},
	"Hematocrito":                               {37, 47},
	"VCM":                                       {80, 100},
	"HCM":                                       {26, 34},
	"CHCM":                                      {31, 36},
	"Recuento de Leucocitos":                    {4, 10.5},
	"Linfocitos":                                {20, 40},
	"Neutrófilos":                               {55, 70},
	"Monocitos":                                 {2, 10},
	"Eosinófilos":                               {0, 5},
	"Basófilos":                                 {0, 2},
	"Recuento de Neutrófilos (Absoluto)":        {2, 7},
	"Recuento de Linfocitos (Absoluto)":         {0.8, 4},
	"Recuento de Plaquetas":                     {150, 400},
	"VHS (Velocidad de sedimentación globular)": {0, 11},
}

// Evaluate checks each known parameter against its reference range and
// returns one finding per out-of-range value. Boundary values are in-range.
// Parameters without a reference entry are skipped. Findings are ordered by
// parameter name so output is stable across runs.
func Evaluate(results map[string]float64) (issues []string, outOfRange bool) {
	params := make([]string, 0, len(results))
	for param := range results {
		params = append(params, param)
	}
	sort.Strings(params)

	for _, param := range params {
		ref, ok := Ranges[param]
		if !ok {
			continue
		}
		value := results[param]
		if value < ref.Min || value > ref.Max {
			issues = append(issues, fmt.Sprintf("%s fuera de rango: %v", param, value))
			outOfRange = true
		}
	}
	return issues, outOfRange
}
