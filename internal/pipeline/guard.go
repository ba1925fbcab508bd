package pipeline

import "github.com/bwmarrin/discordgo"

const (
	ReasonBotAuthor     = "bot_author"
	ReasonDirectMessage = "direct_message"
)

// Decision is the guard chain's verdict for one inbound message. A
// rejected message never reaches the settings lookup or any listener.
type Decision struct {
	Admitted bool
	Reason   string
}

// Admit runs the fixed-order pre-checks: own/bot author first, then
// guild origin. Bot authors are rejected silently; direct messages are
// rejected with a reason so the caller can apply its DM policy.
func Admit(selfID string, msg *discordgo.MessageCreate) Decision {
	if msg == nil || msg.Author == nil || msg.Author.Bot || msg.Author.ID == selfID {
		return Decision{Reason: ReasonBotAuthor}
	}
	if msg.GuildID == "" {
		return Decision{Reason: ReasonDirectMessage}
	}
	return Decision{Admitted: true}
}
