package domain

// Reaction is a user's standing opinion of a video. A user holds at most one
// reaction per video, which keeps like and dislike membership exclusive.
type Reaction string

const (
	ReactionNone    Reaction = ""
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// Valid reports whether r is a storable reaction.
func (r Reaction) Valid() bool {
	return r == ReactionLike || r == ReactionDislike
}

// ReactionChange is the outcome of applying a requested reaction on top of the
// current one: the reaction to store and the counter deltas.
type ReactionChange struct {
	Next         Reaction
	LikeDelta    int64
	DislikeDelta int64
}

// ApplyReaction implements the toggle rule. Requesting the reaction already held
// clears it; requesting the other one replaces it and moves both counters.
func ApplyReaction(current, requested Reaction) ReactionChange {
	var change ReactionChange
	if current == requested {
		change.Next = ReactionNone
		change.add(requested, -1)
		return change
	}

	change.Next = requested
	change.add(requested, 1)
	if current != ReactionNone {
		change.add(current, -1)
	}
	return change
}

func (c *ReactionChange) add(r Reaction, delta int64) {
	switch r {
	case ReactionLike:
		c.LikeDelta += delta
	case ReactionDislike:
		c.DislikeDelta += delta
	}
}
