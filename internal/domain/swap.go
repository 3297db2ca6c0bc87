// Package domain contains core domain types for the skill swap services.
package domain

import (
	"time"
)

// SwapStatus is the lifecycle state of a swap offer.
type SwapStatus string

const (
	SwapPending   SwapStatus = "pending"
	SwapAccepted  SwapStatus = "accepted"
	SwapRejected  SwapStatus = "rejected"
	SwapCompleted SwapStatus = "completed"
)

// transitions lists the statuses reachable from each status.
var transitions = map[SwapStatus][]SwapStatus{
	SwapPending:  {SwapAccepted, SwapRejected},
	SwapAccepted: {SwapCompleted},
}

// Valid returns true if s is one of the known statuses.
func (s SwapStatus) Valid() bool {
	switch s {
	case SwapPending, SwapAccepted, SwapRejected, SwapCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether an offer in status s may move to next.
func (s SwapStatus) CanTransitionTo(next SwapStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SkillLevel is the self-assessed proficiency attached to a skill.
type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelAdvanced     SkillLevel = "advanced"
	LevelExpert       SkillLevel = "expert"
)

// Skill is a named skill at a given level.
type Skill struct {
	Name  string     `json:"name" validate:"required,max=100"`
	Level SkillLevel `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
}

// SwapOffer is a proposed exchange of skills between two users.
type SwapOffer struct {
	ID             string     `json:"id"`
	OfferedBy      string     `json:"offeredBy"`
	OfferedTo      string     `json:"offeredTo"`
	OfferedSkill   Skill      `json:"offeredSkill"`
	RequestedSkill Skill      `json:"requestedSkill"`
	Status         SwapStatus `json:"status"`
	Description    string     `json:"description,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
