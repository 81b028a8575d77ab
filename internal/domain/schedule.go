package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleStatus type for the schedule lifecycle
type ScheduleStatus string

const (
	StatusPending   ScheduleStatus = "pending"
	StatusCompleted ScheduleStatus = "completed" // Athlete finished the session
	StatusCancelled ScheduleStatus = "cancelled" // Session called off
)

// IsValid reports whether the value belongs to the three-value enum.
func (s ScheduleStatus) IsValid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusCancelled
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s ScheduleStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Schedule is a planned training session for an athlete. It references the
// athlete, a catalog Category and a Training; duplicates of the same
// (athlete, training, date) combination are permitted, identity is by ID only.
type Schedule struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID  primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	CategoryID primitive.ObjectID `bson:"categoryId" json:"categoryId"`
	TrainingID primitive.ObjectID `bson:"trainingId" json:"trainingId"`
	Date       time.Time          `bson:"date" json:"date"`
	Status     ScheduleStatus     `bson:"status" json:"status"` // Defaults to pending on creation
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
