package command

import (
	"github.com/bwmarrin/discordgo"
)

// Command is the unit the bot dispatches interactions to.
type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Group() string
	Category() string
	Run(ctx any) error
}

// SlashProvider is implemented by commands that register a slash definition.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// SlashContext carries a slash interaction to a command.
type SlashContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
}

// VoiceState holds minimal voice channel state for a user.
type VoiceState struct {
	ChannelID string
	UserID    string
}
