package rules

import "github.com/noah-isme/ects-quest/internal/models"

// DefaultLevels returns the built-in level table.
func DefaultLevels() []Level {
	return []Level{
		{
			Number: 1,
			Title:  "Freshman Week",
			Budget: 18,
			Rules: []Rule{
				RequiredSubjects("l1-core-subjects", "PROG1", "CALC1"),
				MinECTS("l1-min-ects", 20),
				BannedTag("l1-no-advanced", models.TagAdvanced).
					WithMessages("", "Advanced courses are locked in the first semester"),
				FreeDays("l1-free-friday", models.Friday).AsGoal().WithReward(50).WithStress(-2),
			},
		},
		{
			Number: 2,
			Title:  "Proof Season",
			Budget: 16,
			Rules: []Rule{
				RequiredSubjects("l2-discrete", "DISCRETE"),
				MinECTS("l2-min-ects", 15),
				CumulativeECTS("l2-total-ects", 35).
					WithMessages("{current} ECTS banked so far", "Only {current} of {required} ECTS banked"),
				TagSpecialist("l2-math-floor", models.TagMath, 4),
				MinStartHour("l2-sleep-in", 10).AsGoal().WithReward(30).WithStress(-2),
				MaxDailyHours("l2-short-days", 6).AsGoal().WithReward(20),
			},
		},
		{
			Number: 3,
			Title:  "Tooling Up",
			Budget: 24,
			Rules: []Rule{
				RequiredTag("l3-tools", models.TagTools),
				MinECTS("l3-min-ects", 14),
				BannedWindow("l3-club-afternoon", Window{Day: models.Wednesday, From: 12, To: 16}),
				MaxGap("l3-max-gap", 3),
				StartParity("l3-even-starts", ParityEven).AsGoal().WithReward(40),
			},
		},
		{
			Number: 4,
			Title:  "Systems Semester",
			Budget: 28,
			Rules: []Rule{
				RequiredSubjects("l4-os", "OS"),
				TagExclusion("l4-focus", models.TagAI, models.TagHumanities),
				TagSynergy("l4-os-tools", models.TagOS, models.TagTools),
				MinECTS("l4-min-ects", 14),
				ECTSPrime("l4-prime-ects").AsGoal().WithReward(60),
			},
		},
		{
			Number: 5,
			Title:  "Crunch",
			Budget: 22,
			Rules: []Rule{
				MinFreeDays("l5-free-day", 1),
				TagSpecialist("l5-cs-floor", models.TagCS, 6),
				MaxContactHours("l5-contact-cap", 20),
				MinECTS("l5-min-ects", 14),
				ContactPalindrome("l5-palindrome").AsGoal().WithReward(60),
			},
		},
		{
			Number: 6,
			Title:  "Graduation",
			Budget: 20,
			Rules: []Rule{
				CumulativeECTS("l6-total-ects", 90).
					WithMessages("{current} ECTS, ready to graduate", "{current} of {required} ECTS needed to graduate"),
				MinECTS("l6-min-ects", 10),
				NameLength("l6-long-names", 12).AsGoal().WithReward(20),
				NameVowels("l6-vowels", 4).AsGoal().WithReward(20),
				NameNoDigits("l6-no-digits").AsGoal().WithReward(20),
				TagSpecialist("l6-honours", models.TagAdvanced, 6).
					Titled("Honours track").
					AsGoal().
					WithReward(100).
					ActiveWhen(ActivateBankedECTS, 60),
			},
		},
	}
}

// GlobalRules apply to every level.
func GlobalRules() []Rule {
	return []Rule{
		ComponentsComplete("global-components"),
		NoCollisions("global-no-collisions"),
		Prerequisites("global-prerequisites"),
		NoRepeats("global-no-repeats"),
	}
}
