package gateway

// Dispatcher is the event-publication seam the service layer calls after each
// successful cascade step that changes externally visible state. The concrete
// Manager implements it; tests substitute a mock.
type Dispatcher interface {
	DispatchToGuild(guildID string, event string, data any)
	DispatchToUser(userID string, event string, data any)
	SubscribeToGuild(userID, guildID string)
	UnsubscribeFromGuild(userID, guildID string)
}
