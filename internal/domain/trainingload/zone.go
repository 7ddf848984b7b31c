package trainingload

// Zone is the presentation band of an ACWR value.
type Zone string

const (
	ZoneNone          Zone = ""
	ZoneUndertraining Zone = "undertraining"
	ZoneOptimal       Zone = "optimal"
	ZoneCaution       Zone = "caution"
	ZoneHighRisk      Zone = "high_risk"
)

const (
	optimalLow  = 0.8
	optimalHigh = 1.3
	highRisk    = 1.5
)

// ZoneFor classifies an ACWR: [0.8, 1.3] optimal, above 1.5 high risk,
// below 0.8 undertraining, otherwise caution. A nil ACWR has no zone.
func ZoneFor(acwr *float64) Zone {
	if acwr == nil {
		return ZoneNone
	}
	switch v := *acwr; {
	case v < optimalLow:
		return ZoneUndertraining
	case v <= optimalHigh:
		return ZoneOptimal
	case v > highRisk:
		return ZoneHighRisk
	default:
		return ZoneCaution
	}
}
