package rules

import "github.com/noah-isme/ects-quest/internal/models"

// HintKind names how the solver may prune or target its search.
type HintKind string

const (
	HintMinECTS              HintKind = "MIN_ECTS"
	HintMinTotalECTS         HintKind = "MIN_TOTAL_ECTS"
	HintRequiredSubjects     HintKind = "REQUIRED_SUBJECTS"
	HintBannedTag            HintKind = "BANNED_TAG"
	HintRequiredTag          HintKind = "REQUIRED_TAG"
	HintTagECTSFloor         HintKind = "TAG_ECTS_FLOOR"
	HintTagExclusion         HintKind = "TAG_EXCLUSION"
	HintTagSynergy           HintKind = "TAG_SYNERGY"
	HintMinNameLength        HintKind = "MIN_NAME_LENGTH"
	HintStartParity          HintKind = "START_PARITY"
	HintMaxContactHours      HintKind = "MAX_CONTACT_HOURS"
	HintBannedSlots          HintKind = "BANNED_SLOTS"
	HintMinStartHour         HintKind = "MIN_START_HOUR"
	HintMaxDailyHours        HintKind = "MAX_DAILY_HOURS"
	HintBannedDays           HintKind = "BANNED_DAYS"
	HintForceECTSPrime       HintKind = "FORCE_ECTS_PRIME"
	HintForcePalindromeHours HintKind = "FORCE_PALINDROME_HOURS"
	HintMinFreeDays          HintKind = "MIN_FREE_DAYS"
)

// Hint tells the solver how to satisfy a rule without re-deriving its check.
type Hint struct {
	Kind     HintKind         `json:"kind"`
	Value    int              `json:"value,omitempty"`
	Tag      models.Tag       `json:"tag,omitempty"`
	Partner  models.Tag       `json:"partner,omitempty"`
	Subjects []string         `json:"subjects,omitempty"`
	Days     []models.Weekday `json:"days,omitempty"`
	Windows  []Window         `json:"windows,omitempty"`
	Parity   Parity           `json:"parity,omitempty"`
}

func hintFor(kind Kind, p Params) *Hint {
	switch kind {
	case KindMinECTS:
		return &Hint{Kind: HintMinECTS, Value: p.Threshold}
	case KindCumulativeECTS:
		return &Hint{Kind: HintMinTotalECTS, Value: p.Threshold}
	case KindRequiredSubjects:
		return &Hint{Kind: HintRequiredSubjects, Subjects: append([]string(nil), p.Subjects...)}
	case KindBannedTag:
		return &Hint{Kind: HintBannedTag, Tag: p.Tag}
	case KindRequiredTag:
		return &Hint{Kind: HintRequiredTag, Tag: p.Tag}
	case KindTagSpecialist:
		return &Hint{Kind: HintTagECTSFloor, Tag: p.Tag, Value: p.Threshold}
	case KindTagExclusion:
		return &Hint{Kind: HintTagExclusion, Tag: p.Tag, Partner: p.Partner}
	case KindTagSynergy:
		return &Hint{Kind: HintTagSynergy, Tag: p.Tag, Partner: p.Partner}
	case KindNameLength:
		return &Hint{Kind: HintMinNameLength, Value: p.Threshold}
	case KindStartParity:
		return &Hint{Kind: HintStartParity, Parity: p.Parity}
	case KindMaxContactHours:
		return &Hint{Kind: HintMaxContactHours, Value: p.Threshold}
	case KindBannedWindow:
		return &Hint{Kind: HintBannedSlots, Windows: append([]Window(nil), p.Windows...)}
	case KindMinStartHour:
		return &Hint{Kind: HintMinStartHour, Value: p.Threshold}
	case KindMaxDailyHours:
		return &Hint{Kind: HintMaxDailyHours, Value: p.Threshold}
	case KindFreeDays:
		return &Hint{Kind: HintBannedDays, Days: append([]models.Weekday(nil), p.Days...)}
	case KindECTSPrime:
		return &Hint{Kind: HintForceECTSPrime}
	case KindContactPalindrome:
		return &Hint{Kind: HintForcePalindromeHours}
	case KindMinFreeDays:
		return &Hint{Kind: HintMinFreeDays, Value: p.Threshold}
	}
	return nil
}
