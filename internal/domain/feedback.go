package domain

import "time"

// SkillTaught rates how well a specific skill was taught during a swap.
type SkillTaught struct {
	Name          string `json:"name,omitempty"`
	Effectiveness int    `json:"effectiveness,omitempty"`
}

// Feedback is the one-time rating a swap participant leaves for the other.
type Feedback struct {
	ID          string       `json:"id"`
	SwapOfferID string       `json:"swapOfferId"`
	GivenBy     string       `json:"givenBy"`
	GivenTo     string       `json:"givenTo"`
	Rating      int          `json:"rating"`
	Comment     string       `json:"comment,omitempty"`
	SkillTaught *SkillTaught `json:"skillTaught,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Stats aggregates the feedback received by one user.
// The zero value is the answer for a user with no feedback.
type Stats struct {
	AverageRating      float64 `json:"averageRating"`
	TotalRatings       int     `json:"totalRatings"`
	SkillEffectiveness float64 `json:"skillEffectiveness"`
}
