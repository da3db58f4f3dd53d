package player

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/beatframe/beatframe/internal/track"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const (
	colorGood    = 0x2ECC71
	colorWarning = 0xE67E22

	embedFooter = "music player"

	// Width of the progress strip in glyph cells.
	progressCells = 25
)

// TrackView owns the single live control message mirroring a guild's playback
// state. Only the view mutates the message; orchestrator command handlers go
// through Update/Delete and never touch the message directly.
type TrackView struct {
	guildID   string
	channelID string
	messageID string
	embed     *discordgo.MessageEmbed

	msg Messenger
	log zerolog.Logger
}

func newTrackView(guildID, channelID string, msg Messenger, log zerolog.Logger) *TrackView {
	return &TrackView{
		guildID:   guildID,
		channelID: channelID,
		msg:       msg,
		log:       log,
	}
}

// MessageID returns the live message identity, empty before the first send.
func (v *TrackView) MessageID() string {
	return v.messageID
}

// Update recomputes the embed for the given state. With modify set it also
// edits the live message in place; without a live message that is a no-op —
// Update never sends a message as a side effect.
func (v *TrackView) Update(it *track.Item, volume int, paused, looping, modify bool) error {
	if it == nil {
		return nil
	}

	v.embed = buildEmbed(it, volume, paused, looping)
	if !modify || v.messageID == "" {
		return nil
	}

	if err := v.msg.EditEmbed(v.channelID, v.messageID, v.embed); err != nil {
		return fmt.Errorf("failed to edit control message: %w", err)
	}
	return nil
}

// Send posts the current embed as a fresh control message.
func (v *TrackView) Send() error {
	if v.embed == nil {
		return nil
	}
	id, err := v.msg.SendEmbed(v.channelID, v.embed)
	if err != nil {
		return fmt.Errorf("failed to send control message: %w", err)
	}
	v.messageID = id
	return nil
}

// Delete removes the live message best-effort. The local reference is cleared
// on every exit path so the view never points at a stale artifact; a message
// already deleted by a user is not an error.
func (v *TrackView) Delete() {
	if v.messageID == "" {
		return
	}
	id := v.messageID
	v.messageID = ""
	if err := v.msg.DeleteMessage(v.channelID, id); err != nil {
		v.log.Debug().Err(err).Str("guild", v.guildID).Msg("control message already gone")
	}
}

// buildEmbed dispatches on the item variant. The variant set is closed, so a
// plain switch covers it.
func buildEmbed(it *track.Item, volume int, paused, looping bool) *discordgo.MessageEmbed {
	switch it.Kind {
	case track.KindStream:
		return buildStreamEmbed(it, volume, paused, looping)
	case track.KindCatalog:
		return buildCatalogEmbed(it, volume, paused, looping)
	default:
		return buildUnknownEmbed(it, volume, paused, looping)
	}
}

func buildCatalogEmbed(it *track.Item, volume int, paused, looping bool) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Description: "🎶 Now playing the following track",
		Color:       colorGood,
		Footer:      &discordgo.MessageEmbedFooter{Text: embedFooter},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Title", Value: it.Title, Inline: true},
			{Name: "Author", Value: it.Author, Inline: true},
			{Name: "Stream", Value: "false", Inline: true},
			{Name: "Volume", Value: fmt.Sprintf("%d%%", volume), Inline: true},
			{Name: "Paused", Value: fmt.Sprintf("%t", paused), Inline: true},
			{Name: "Looping", Value: fmt.Sprintf("%t", looping), Inline: true},
			{Name: "Length", Value: formattedTrack(it), Inline: false},
		},
	}
	if it.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: it.ArtworkURL}
	}
	return embed
}

func buildStreamEmbed(it *track.Item, volume int, paused, looping bool) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Description: "📻 Now playing a live stream",
		Color:       colorGood,
		Footer:      &discordgo.MessageEmbedFooter{Text: embedFooter},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Title", Value: it.Title, Inline: true},
			{Name: "Author", Value: it.Author, Inline: true},
			{Name: "Stream", Value: "true", Inline: true},
			{Name: "Volume", Value: fmt.Sprintf("%d%%", volume), Inline: true},
			{Name: "Paused", Value: fmt.Sprintf("%t", paused), Inline: true},
			{Name: "Looping", Value: fmt.Sprintf("%t", looping), Inline: true},
			{Name: "Length", Value: formattedTrack(it), Inline: false},
		},
	}
	if it.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: it.ArtworkURL}
	}
	return embed
}

// buildUnknownEmbed is the degraded rendering for content the resolver could
// not classify: identity and flags only.
func buildUnknownEmbed(it *track.Item, volume int, paused, looping bool) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: "🎶 Playing unknown type of content",
		Color:       colorWarning,
		Footer:      &discordgo.MessageEmbedFooter{Text: embedFooter},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ID", Value: it.ID, Inline: true},
			{Name: "Volume", Value: fmt.Sprintf("%d%%", volume), Inline: true},
			{Name: "Paused", Value: fmt.Sprintf("%t", paused), Inline: true},
			{Name: "Looping", Value: fmt.Sprintf("%t", looping), Inline: true},
		},
	}
}

// buildQueuedEmbed announces an item that joined the backlog queue.
func buildQueuedEmbed(it *track.Item) *discordgo.MessageEmbed {
	length := " - "
	if !it.IsStream() && it.Length > 0 {
		length = track.FormatDuration(it.Length)
	}
	embed := &discordgo.MessageEmbed{
		Description: "🎶 Added the following track to the queue",
		Color:       colorGood,
		Footer:      &discordgo.MessageEmbedFooter{Text: embedFooter},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Title", Value: it.Title, Inline: true},
			{Name: "Author", Value: it.Author, Inline: true},
			{Name: "Stream", Value: fmt.Sprintf("%t", it.IsStream()), Inline: true},
			{Name: "Length", Value: length, Inline: true},
		},
	}
	if it.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: it.ArtworkURL}
	}
	return embed
}

// formattedTrack renders the position strip with timestamps. Streams get an
// indefinite indicator; catalog tracks get a proportional marker.
func formattedTrack(it *track.Item) string {
	var length, pos time.Duration
	if !it.IsStream() {
		length = it.Length
		pos = it.Position
	}

	line := progressLine(pos, length, it.IsStream())
	return fmt.Sprintf("`%s`\n```http\n▶ %s %s\n```",
		track.FormatDuration(length), line, track.FormatDuration(pos))
}

// progressLine places a single marker glyph on a fixed-width strip.
// Position 0 puts the marker in the leftmost cell, a full track in the
// rightmost.
func progressLine(pos, length time.Duration, stream bool) string {
	if stream || length <= 0 {
		return strings.Repeat("─", progressCells-1) + "⚪"
	}

	perc := float64(pos) / float64(length) * 100
	if perc > 100 {
		perc = 100
	}
	cell := int(math.Ceil(progressCells / 100.0 * perc))
	if cell <= 0 {
		return "⚪" + strings.Repeat("─", progressCells-1)
	}
	return strings.Repeat("─", cell-1) + "⚪" + strings.Repeat("─", progressCells-cell)
}
