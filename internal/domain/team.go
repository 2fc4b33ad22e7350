// internal/domain/team.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team is a coach-owned group of athletes. A workout owned by a team is
// tracked separately by every member.
type Team struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CoachID   primitive.ObjectID   `bson:"coachId" json:"coachId"`
	Name      string               `bson:"name" json:"name"`
	MemberIDs []primitive.ObjectID `bson:"memberIds" json:"memberIds"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasMember reports whether athleteID belongs to the team.
func (t *Team) HasMember(athleteID primitive.ObjectID) bool {
	for _, id := range t.MemberIDs {
		if id == athleteID {
			return true
		}
	}
	return false
}
