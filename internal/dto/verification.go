package dto

import "time"

// VerificationStatus tracks a verification run.
type VerificationStatus string

const (
	VerificationPending VerificationStatus = "PENDING"
	VerificationRunning VerificationStatus = "RUNNING"
	VerificationPassed  VerificationStatus = "PASSED"
	VerificationFailed  VerificationStatus = "FAILED"
)

// VerificationRequest asks for a campaign per seed. Count generates seeds 1..Count when Seeds is empty.
type VerificationRequest struct {
	Seeds []int64 `json:"seeds" validate:"omitempty,max=64"`
	Count int     `json:"count" validate:"omitempty,min=1,max=64"`
}

// LevelCheck is the solver result for one level of one campaign.
type LevelCheck struct {
	Level       int    `json:"level"`
	Solved      bool   `json:"solved"`
	Attempts    int    `json:"attempts"`
	GoalsWaived bool   `json:"goalsWaived"`
	ECTS        int    `json:"ects"`
	Willpower   int    `json:"willpower"`
	Budget      int    `json:"budget"`
	Score       int    `json:"score"`
	Error       string `json:"error,omitempty"`
}

// CampaignReport plays every level in order with one seed.
type CampaignReport struct {
	Seed       int64        `json:"seed"`
	Completed  bool         `json:"completed"`
	Levels     []LevelCheck `json:"levels"`
	TotalECTS  int          `json:"totalEcts"`
	TotalScore int          `json:"totalScore"`
}

// VerificationRun is a queued or finished verification.
type VerificationRun struct {
	ID         string             `json:"id"`
	Status     VerificationStatus `json:"status"`
	Seeds      []int64            `json:"seeds"`
	Campaigns  []CampaignReport   `json:"campaigns,omitempty"`
	Error      string             `json:"error,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	FinishedAt *time.Time         `json:"finishedAt,omitempty"`
}
