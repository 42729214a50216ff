package models

// Message is the minimal message document. The message surface itself lives
// elsewhere; guild deletion needs the collection so it can cascade over it.
type Message struct {
	ID        string `bson:"_id" json:"id"`
	ChannelID string `bson:"channel" json:"channel"`
	AuthorID  string `bson:"author" json:"author"`
	Content   string `bson:"content" json:"content"`
}
