package monitor

import "strconv"

// GenerationMetrics is the authoritative per-generation record of an
// experiment. One record is appended per generation and never mutated.
// Optional fields are nil when the generation had no oracle interactions.
type GenerationMetrics struct {
	Generation         int      `json:"generation"`
	AverageAge         float64  `json:"average_age"`
	AverageDiscrepancy float64  `json:"average_discrepancy"`
	SurvivorCount      int      `json:"survivor_count"`
	CohesionMean       *float64 `json:"cohesion_mean"`
	CohesionMedian     *float64 `json:"cohesion_median"`
	OracleAccuracy     float64  `json:"oracle_accuracy"`
	OracleInteractions int      `json:"oracle_interactions"`
	LeapFlag           bool     `json:"leap_flag"`
	ZScore             *float64 `json:"z_score"`
}

// CSVHeader is the generation-summary column order. plot tooling depends
// on these names; do not reorder.
func CSVHeader() []string {
	return []string{
		"generation",
		"average_age",
		"average_discrepancy",
		"survivor_count",
		"cohesion_mean",
		"cohesion_median",
		"oracle_accuracy",
		"oracle_interactions",
		"leap_flag",
		"z_score",
	}
}

// CSVRecord renders the metrics as one generation-summary row. Missing
// numeric values become empty fields.
func (m GenerationMetrics) CSVRecord() []string {
	leap := "0"
	if m.LeapFlag {
		leap = "1"
	}
	return []string{
		strconv.Itoa(m.Generation),
		formatFloat(m.AverageAge),
		formatFloat(m.AverageDiscrepancy),
		strconv.Itoa(m.SurvivorCount),
		formatOptional(m.CohesionMean),
		formatOptional(m.CohesionMedian),
		formatFloat(m.OracleAccuracy),
		strconv.Itoa(m.OracleInteractions),
		leap,
		formatOptional(m.ZScore),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
