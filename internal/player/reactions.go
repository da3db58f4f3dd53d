package player

// ControlEmojis is the glyph set attached to every control message, in
// display order.
var ControlEmojis = []string{"⏯", "🔁", "⬆", "⬇", "⏭"}

// ReactionEvent is an inbound emoji reaction as the transport reports it.
// Added and removed reactions are routed identically, so toggling a reaction
// triggers the mapped command either way.
type ReactionEvent struct {
	GuildID   string
	ChannelID string
	MessageID string
	Emoji     string
	UserID    string

	UserResolved  bool
	UserIsBot     bool
	UserIsWebhook bool
	DM            bool
}

type reactionCommand func(o *Orchestrator, guildID, voiceChannelID, textChannelID string)

var reactionCommands = map[string]reactionCommand{
	"⏯": func(o *Orchestrator, g, vc, tc string) { o.togglePlayPause(g, vc, tc) },
	"🔁": func(o *Orchestrator, g, vc, tc string) { _, _ = o.ToggleLoop(g, vc, tc) },
	"⬆": func(o *Orchestrator, g, vc, tc string) { o.bumpVolume(g, vc, tc, VolumeStep) },
	"⬇": func(o *Orchestrator, g, vc, tc string) { o.bumpVolume(g, vc, tc, -VolumeStep) },
	"⏭": func(o *Orchestrator, g, vc, tc string) { _ = o.Skip(g, vc, tc) },
}

// HandleReaction validates and routes one reaction event. Invalid or stale
// events are dropped silently; a leftover reaction on an old message is
// expected, not an error. After a dispatched command the control message is
// re-rendered so the visible state matches the session even when the command
// already rendered once.
func (o *Orchestrator) HandleReaction(ev ReactionEvent) {
	if ev.DM || !ev.UserResolved || ev.UserIsBot || ev.UserIsWebhook {
		return
	}
	cmd, ok := reactionCommands[ev.Emoji]
	if !ok {
		return
	}

	s := o.lookup(ev.GuildID)
	if s == nil {
		return
	}
	if _, inVoice := o.resolver.UserVoiceChannel(ev.GuildID, ev.UserID); !inVoice {
		return
	}

	s.mu.Lock()
	voiceChannelID, textChannelID := s.voiceChannelID, s.textChannelID
	s.mu.Unlock()

	cmd(o, ev.GuildID, voiceChannelID, textChannelID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != nil && s.current != nil {
		if err := s.view.Update(s.current, s.volume, s.paused, s.looping, true); err != nil {
			o.log.Debug().Err(err).Str("guild", ev.GuildID).Msg("post-reaction render failed")
		}
	}
}

func (o *Orchestrator) togglePlayPause(guildID, voiceChannelID, textChannelID string) {
	s := o.lookup(guildID)
	if s == nil {
		return
	}
	s.mu.Lock()
	playing, paused := s.current != nil, s.paused
	s.mu.Unlock()

	if !playing {
		return
	}
	if paused {
		_ = o.Resume(guildID, voiceChannelID, textChannelID)
	} else {
		_ = o.Pause(guildID, voiceChannelID, textChannelID)
	}
}

func (o *Orchestrator) bumpVolume(guildID, voiceChannelID, textChannelID string, delta int) {
	s := o.lookup(guildID)
	if s == nil {
		return
	}
	s.mu.Lock()
	volume := s.volume
	s.mu.Unlock()

	_ = o.SetVolume(guildID, voiceChannelID, textChannelID, volume+delta)
}
