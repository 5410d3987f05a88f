package service

// EngagementRecorder observes successful engagement mutations. metrics.Collector implements it.
type EngagementRecorder interface {
	ReactionToggled(reaction, result string)
	ViewRegistered()
	CommentAdded()
	CommentDeleted()
}

type noopRecorder struct{}

func (noopRecorder) ReactionToggled(string, string) {}
func (noopRecorder) ViewRegistered()                {}
func (noopRecorder) CommentAdded()                  {}
func (noopRecorder) CommentDeleted()                {}
