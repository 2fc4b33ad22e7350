// Package instantiate deep-copies workout structures onto new owners and
// dates, giving every copied block and exercise a fresh identifier.
package instantiate

import (
	"alcyxob/coaching-app/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxIDAttempts bounds how often a colliding identifier is regenerated.
const maxIDAttempts = 16

// IDFunc generates a block or exercise identifier.
type IDFunc func() string

// Destination describes where an instantiated workout lands.
type Destination struct {
	CoachID primitive.ObjectID
	Owner   domain.OwnerRef
	Date    string
	Name    string // empty keeps the source name
}

// Builder clones workout trees. It remembers every identifier it has seen
// or issued, so a batch of instantiations from the same template never
// reuses one. A Builder is not safe for concurrent use.
type Builder struct {
	newID IDFunc
	used  map[string]struct{}
}

// NewBuilder returns a Builder using newID, or random UUIDs when nil.
func NewBuilder(newID IDFunc) *Builder {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Builder{newID: newID, used: make(map[string]struct{})}
}

// Workout returns a new workout with the source's blocks and exercises in
// the same order and with the same attributes, but with new identifiers and
// the destination's owner, date and name. The source is not modified and
// shares no slices with the result. The result has no ID; the repository
// assigns one on insert. Set records are never part of a workout, so the
// copy starts with none.
func (b *Builder) Workout(src *domain.Workout, dest Destination) domain.Workout {
	b.reserve(src)

	name := dest.Name
	if name == "" {
		name = src.Name
	}
	out := domain.Workout{
		CoachID: dest.CoachID,
		Name:    name,
		Date:    dest.Date,
		Notes:   src.Notes,
		Blocks:  make([]domain.Block, 0, len(src.Blocks)),
	}
	out.SetOwner(copyOwner(dest.Owner))

	for _, sb := range src.Blocks {
		nb := domain.Block{
			ID:        b.freshID(),
			Name:      sb.Name,
			Exercises: make([]domain.WorkoutExercise, 0, len(sb.Exercises)),
		}
		for _, se := range sb.Exercises {
			ne := se
			ne.ID = b.freshID()
			nb.Exercises = append(nb.Exercises, ne)
		}
		out.Blocks = append(out.Blocks, nb)
	}
	return out
}

// FillIDs gives an identifier to every block and exercise that has none or
// whose identifier already appeared earlier in the tree. Blocks are updated
// in place and returned.
func (b *Builder) FillIDs(blocks []domain.Block) []domain.Block {
	seen := make(map[string]struct{})
	claim := func(id string) string {
		if _, dup := seen[id]; id == "" || dup {
			id = b.freshID()
		}
		seen[id] = struct{}{}
		b.used[id] = struct{}{}
		return id
	}
	for bi := range blocks {
		blocks[bi].ID = claim(blocks[bi].ID)
		for ei := range blocks[bi].Exercises {
			blocks[bi].Exercises[ei].ID = claim(blocks[bi].Exercises[ei].ID)
		}
	}
	return blocks
}

func (b *Builder) reserve(src *domain.Workout) {
	if !src.ID.IsZero() {
		b.used[src.ID.Hex()] = struct{}{}
	}
	for _, bl := range src.Blocks {
		b.used[bl.ID] = struct{}{}
		for _, ex := range bl.Exercises {
			b.used[ex.ID] = struct{}{}
		}
	}
}

func (b *Builder) freshID() string {
	for i := 0; i < maxIDAttempts; i++ {
		id := b.newID()
		if _, taken := b.used[id]; id != "" && !taken {
			b.used[id] = struct{}{}
			return id
		}
	}
	panic("instantiate: id generator keeps returning identifiers already in use")
}

func copyOwner(o domain.OwnerRef) domain.OwnerRef {
	var out domain.OwnerRef
	if o.AthleteID != nil {
		id := *o.AthleteID
		out.AthleteID = &id
	}
	if o.TeamID != nil {
		id := *o.TeamID
		out.TeamID = &id
	}
	return out
}
