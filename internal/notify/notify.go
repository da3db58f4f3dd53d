package notify

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const (
	colorGood    = 0x2ECC71
	colorWarning = 0xE67E22
)

// Sink sends ephemeral success/warning notices to text channels. Delivery
// failures are logged and swallowed; a notice is never worth failing an
// operation over.
type Sink struct {
	dg  *discordgo.Session
	log zerolog.Logger
}

// New creates a notification sink on the given Discord session.
func New(dg *discordgo.Session, log zerolog.Logger) *Sink {
	return &Sink{dg: dg, log: log}
}

// Success posts a green notice embed.
func (n *Sink) Success(channelID, title, body string) {
	n.send(channelID, title, body, colorGood)
}

// Warning posts an orange notice embed.
func (n *Sink) Warning(channelID, title, body string) {
	n.send(channelID, title, body, colorWarning)
}

func (n *Sink) send(channelID, title, body string, color int) {
	if channelID == "" {
		return
	}
	_, err := n.dg.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Description: body,
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: title},
	})
	if err != nil {
		n.log.Warn().Err(err).Str("channel", channelID).Msg("failed to send notice")
	}
}
