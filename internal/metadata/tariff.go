package metadata

// CostKind names a willpower line item.
type CostKind string

const (
	CostCommuterTax CostKind = "COMMUTER_TAX"
	CostEarlyRiser  CostKind = "EARLY_RISER"
	CostNightShift  CostKind = "NIGHT_SHIFT"
	CostFridayDrag  CostKind = "FRIDAY_DRAG"
	CostClopen      CostKind = "THE_CLOPEN"
	CostStarvation  CostKind = "STARVATION"
	CostHugeGap     CostKind = "HUGE_GAP"
	CostExamStress  CostKind = "EXAM_STRESS"
)

// Thresholds of the cost model.
const (
	CommuterMaxHours     = 2
	NightShiftAfter      = 18
	FridayDragAfter      = 16
	ClopenPrevEndAtLeast = 18
	ClopenStartAtMost    = 10
	StarvationRunHours   = 6
	HugeGapHours         = 3
	DiscountFromLevel    = 5
)

// Tariff holds the willpower price of each line item.
type Tariff struct {
	CommuterTax int `json:"commuterTax"`
	EarlyRiser  int `json:"earlyRiser"`
	NightShift  int `json:"nightShift"`
	FridayDrag  int `json:"fridayDrag"`
	Clopen      int `json:"clopen"`
	Starvation  int `json:"starvation"`
	HugeGap     int `json:"hugeGap"`
	ExamStress  int `json:"examStress"`
}

// BaseTariff applies to the first levels.
var BaseTariff = Tariff{
	CommuterTax: 2,
	EarlyRiser:  2,
	NightShift:  2,
	FridayDrag:  3,
	Clopen:      3,
	Starvation:  4,
	HugeGap:     2,
	ExamStress:  3,
}

// TariffFor returns the tariff of a level. Seasoned students shrug off early
// mornings and late evenings a little better.
func TariffFor(level int) Tariff {
	t := BaseTariff
	if level >= DiscountFromLevel {
		t.EarlyRiser--
		t.NightShift--
	}
	return t
}

// Price returns the tariff entry for kind.
func (t Tariff) Price(kind CostKind) int {
	switch kind {
	case CostCommuterTax:
		return t.CommuterTax
	case CostEarlyRiser:
		return t.EarlyRiser
	case CostNightShift:
		return t.NightShift
	case CostFridayDrag:
		return t.FridayDrag
	case CostClopen:
		return t.Clopen
	case CostStarvation:
		return t.Starvation
	case CostHugeGap:
		return t.HugeGap
	case CostExamStress:
		return t.ExamStress
	}
	return 0
}
