package player

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/beatframe/beatframe/internal/track"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const (
	// MinVolume and MaxVolume bound SetVolume input; out-of-range values
	// are clamped rather than rejected.
	MinVolume = 0
	MaxVolume = 150

	// VolumeStep is the increment used by the volume control reactions.
	VolumeStep = 10
)

var ErrNotConnected = errors.New("no active session for guild")

// Deps holds the collaborators an Orchestrator is constructed with. All
// references are explicit; nothing is resolved by name at runtime.
type Deps struct {
	Engine    Engine
	Voice     VoiceGateway
	Messenger Messenger
	Notifier  Notifier
	Lyrics    LyricsProvider
	Resolver  VoiceStateResolver

	// AttachReactions attaches the control glyphs to a freshly sent
	// control message in the background. Optional; failures must never
	// affect the send path.
	AttachReactions func(channelID, messageID string)

	Log           zerolog.Logger
	DefaultVolume int
}

// Orchestrator owns the guild → session map and drives the playback state
// machine for every guild. Command entrypoints, reaction routing and engine
// lifecycle events all funnel through here; per-guild mutation is serialized
// by each session's lock, and the map lock only covers lookup and insert so
// guilds never contend with each other.
type Orchestrator struct {
	mu       sync.Mutex
	sessions map[string]*Session

	engine   Engine
	voice    VoiceGateway
	msg      Messenger
	notifier Notifier
	lyrics   LyricsProvider
	resolver VoiceStateResolver
	attach   func(channelID, messageID string)

	log           zerolog.Logger
	defaultVolume int
}

// NewOrchestrator builds an orchestrator from its dependencies.
func NewOrchestrator(deps Deps) *Orchestrator {
	volume := deps.DefaultVolume
	if volume <= 0 {
		volume = 50
	}
	return &Orchestrator{
		sessions:      make(map[string]*Session),
		engine:        deps.Engine,
		voice:         deps.Voice,
		msg:           deps.Messenger,
		notifier:      deps.Notifier,
		lyrics:        deps.Lyrics,
		resolver:      deps.Resolver,
		attach:        deps.AttachReactions,
		log:           deps.Log,
		defaultVolume: volume,
	}
}

// lookup returns the session for a guild, or nil. It never creates one.
func (o *Orchestrator) lookup(guildID string) *Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessions[guildID]
}

// Sessions returns the number of live sessions.
func (o *Orchestrator) Sessions() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sessions)
}

// acquire resolves the session for a guild, creating it and joining voice on
// first use, and returns it with its lock held. The caller must unlock.
// Creation is an atomic check-and-insert; a concurrent teardown is handled by
// retrying, which matches the deliberate-restart rule for commands arriving
// after a disconnect.
func (o *Orchestrator) acquire(guildID, voiceChannelID, textChannelID string) (*Session, error) {
	for {
		o.mu.Lock()
		s, ok := o.sessions[guildID]
		if !ok {
			s = newSession(guildID, o.defaultVolume)
			o.sessions[guildID] = s
		}
		o.mu.Unlock()

		s.mu.Lock()

		// The session may have been torn down between lookup and lock.
		o.mu.Lock()
		current := o.sessions[guildID]
		o.mu.Unlock()
		if current != s {
			s.mu.Unlock()
			continue
		}

		if !s.connected {
			if voiceChannelID == "" {
				s.mu.Unlock()
				o.removeSession(guildID, s)
				return nil, ErrNotConnected
			}
			if err := o.voice.Join(guildID, voiceChannelID); err != nil {
				s.mu.Unlock()
				o.removeSession(guildID, s)
				return nil, fmt.Errorf("failed to join voice channel: %w", err)
			}
			s.connected = true
			s.voiceChannelID = voiceChannelID
		} else if voiceChannelID != "" && s.voiceChannelID != voiceChannelID {
			if err := o.voice.Join(guildID, voiceChannelID); err != nil {
				o.log.Warn().Err(err).Str("guild", guildID).Msg("could not move voice channel")
			} else {
				s.voiceChannelID = voiceChannelID
			}
		}

		if textChannelID != "" {
			s.textChannelID = textChannelID
		}
		return s, nil
	}
}

func (o *Orchestrator) removeSession(guildID string, s *Session) {
	o.mu.Lock()
	if o.sessions[guildID] == s {
		delete(o.sessions, guildID)
	}
	o.mu.Unlock()
}

// Connect resolves (or creates) the session for a guild, moving the voice
// connection when the requested channel differs. Idempotent.
func (o *Orchestrator) Connect(guildID, voiceChannelID, textChannelID string) (*Session, error) {
	s, err := o.acquire(guildID, voiceChannelID, textChannelID)
	if err != nil {
		return nil, err
	}
	s.mu.Unlock()
	return s, nil
}

// AddTrack admits one item: while playing it joins the backlog queue and a
// lightweight notice is sent; while idle it starts immediately and the full
// control message is rendered. Nothing else auto-starts a queued item.
func (o *Orchestrator) AddTrack(guildID, voiceChannelID, textChannelID string, it *track.Item) error {
	s, err := o.acquire(guildID, voiceChannelID, textChannelID)
	if err != nil {
		o.notifier.Warning(textChannelID, embedFooter, "Could not reach the audio engine, try again later")
		return err
	}
	defer s.mu.Unlock()

	if s.current != nil {
		s.queue.Enqueue(it)
		if _, err := o.msg.SendEmbed(s.textChannelID, buildQueuedEmbed(it)); err != nil {
			o.log.Warn().Err(err).Str("guild", guildID).Msg("queued-track notice failed")
		}
		return nil
	}

	if err := o.engine.Play(guildID, it, false); err != nil {
		o.notifier.Warning(s.textChannelID, embedFooter,
			fmt.Sprintf("Could not start **%s**", it.Title))
		return fmt.Errorf("engine rejected play: %w", err)
	}
	s.current = it
	s.paused = false
	o.sendPlayerLocked(s)
	return nil
}

// AddPlaylist admits a resolved list of items: the first starts playback when
// idle, the rest join the queue in order.
func (o *Orchestrator) AddPlaylist(guildID, voiceChannelID, textChannelID string, items []*track.Item) error {
	if len(items) == 0 {
		return nil
	}

	s, err := o.acquire(guildID, voiceChannelID, textChannelID)
	if err != nil {
		o.notifier.Warning(textChannelID, embedFooter, "Could not reach the audio engine, try again later")
		return err
	}
	defer s.mu.Unlock()

	if s.current != nil {
		s.queue.Enqueue(items...)
		o.notifier.Success(s.textChannelID, embedFooter,
			fmt.Sprintf("🎶 Added %d track(s) to the queue", len(items)))
		return nil
	}

	first, rest := items[0], items[1:]
	if err := o.engine.Play(guildID, first, false); err != nil {
		o.notifier.Warning(s.textChannelID, embedFooter,
			fmt.Sprintf("Could not start **%s**", first.Title))
		return fmt.Errorf("engine rejected play: %w", err)
	}
	s.current = first
	s.paused = false
	s.queue.Enqueue(rest...)
	o.sendPlayerLocked(s)
	if len(rest) > 0 {
		o.notifier.Success(s.textChannelID, embedFooter,
			fmt.Sprintf("🎶 Added %d more track(s) to the queue", len(rest)))
	}
	return nil
}

// ToggleLoop flips the loop flag and returns the new value. The engine is
// untouched; only future finish handling changes.
func (o *Orchestrator) ToggleLoop(guildID, voiceChannelID, textChannelID string) (bool, error) {
	s, err := o.acquire(guildID, voiceChannelID, textChannelID)
	if err != nil {
		return false, err
	}
	defer s.mu.Unlock()

	s.looping = !s.looping
	return s.looping, nil
}

// Shuffle permutes the pending queue.
func (o *Orchestrator) Shuffle(guildID, voiceChannelID, textChannelID string) error {
	s, err := o.acquire(guildID, voiceChannelID, textChannelID)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	s.queue.Shuffle()
	return nil
}

// Clear empties the queue and stops the current track if one is playing; the
// resulting finish event with an empty queue moves the session to idle.
func (o *Orchestrator) Clear(guildID, voiceChannelID, textChannelID string) error {
	s, err := o.acquire(guildID, voiceChannelID, textChannelID)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	s.queue.Clear()
	if s.current != nil {
		if err := o.engine.Stop(guildID); err != nil {
			return fmt.Errorf("engine rejected stop: %w", err)
		}
	}
	return nil
}

// Pause suspends playback. A no-op unless something is playing and not
// already paused.
func (o *Orchestrator) Pause(guildID, voiceChannelID, textChannelID string) error {
	s, err := o.acquire(guildID, voiceChannelID, textChannelID)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if s.current == nil || s.paused {
		return nil
	}
	if err := o.engine.Pause(guildID, true); err != nil {
		return fmt.Errorf("engine rejected pause: %w", err)
	}
	s.paused = true
	return nil
}

// Resume continues paused playback. A no-op unless paused.
func (o *Orchestrator) Resume(guildID, voiceChannelID, textChannelID string) error {
	s, err := o.acquire(guildID, voiceChannelID, textChannelID)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if s.current == nil || !s.paused {
		return nil
	}
	if err := o.engine.Pause(guildID, false); err != nil {
		return fmt.Errorf("engine rejected resume: %w", err)
	}
	s.paused = false
	return nil
}

// Skip stops the current track; the queue advance happens on the finish
// event the engine emits in response, the same path as a natural end.
func (o *Orchestrator) Skip(guildID, voiceChannelID, textChannelID string) error {
	s, err := o.acquire(guildID, voiceChannelID, textChannelID)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	if err := o.engine.Stop(guildID); err != nil {
		return fmt.Errorf("engine rejected stop: %w", err)
	}
	return nil
}

// SetVolume clamps the requested volume and applies it. The engine is only
// told while a track is live; the stored value always feeds the next render.
func (o *Orchestrator) SetVolume(guildID, voiceChannelID, textChannelID string, volume int) error {
	if volume < MinVolume {
		volume = MinVolume
	}
	if volume > MaxVolume {
		volume = MaxVolume
	}

	s, err := o.acquire(guildID, voiceChannelID, textChannelID)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if s.current != nil {
		if err := o.engine.SetVolume(guildID, volume); err != nil {
			return fmt.Errorf("engine rejected volume change: %w", err)
		}
	}
	s.volume = volume
	return nil
}

// GetLyrics returns lyrics for the current track. Lookup failures degrade to
// a placeholder; an idle session answers with a fixed notice.
func (o *Orchestrator) GetLyrics(ctx context.Context, guildID, voiceChannelID, textChannelID string) (string, error) {
	s, err := o.acquire(guildID, voiceChannelID, textChannelID)
	if err != nil {
		return "", err
	}
	if s.current == nil {
		s.mu.Unlock()
		return "Nothing is playing", nil
	}
	author, title := s.current.Author, s.current.Title
	s.mu.Unlock()

	// Lookup happens outside the session lock; it is slow remote I/O.
	text, err := o.lyrics.Lyrics(ctx, author, title)
	if err != nil {
		o.log.Debug().Err(err).Str("title", title).Msg("lyrics lookup failed")
		return fmt.Sprintf("No lyrics found for **%s**", title), nil
	}
	return text, nil
}

// SendQueueView posts a read-only view of the pending queue.
func (o *Orchestrator) SendQueueView(guildID, voiceChannelID, textChannelID string) error {
	s, err := o.acquire(guildID, voiceChannelID, textChannelID)
	if err != nil {
		return err
	}
	items := s.queue.Snapshot()
	channelID := s.textChannelID
	s.mu.Unlock()

	if len(items) == 0 {
		o.notifier.Success(channelID, "track queue", "The track queue is empty")
		return nil
	}

	_, err = o.msg.SendEmbed(channelID, buildQueueEmbed(items))
	if err != nil {
		return fmt.Errorf("failed to send queue view: %w", err)
	}
	return nil
}

const queueViewLimit = 15

func buildQueueEmbed(items []*track.Item) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Description: fmt.Sprintf("🎶 %d track(s) in the queue", len(items)),
		Color:       colorGood,
		Footer:      &discordgo.MessageEmbedFooter{Text: embedFooter},
	}
	for i, it := range items {
		if i == queueViewLimit {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  "…",
				Value: fmt.Sprintf("and %d more", len(items)-queueViewLimit),
			})
			break
		}
		length := " - "
		if !it.IsStream() && it.Length > 0 {
			length = track.FormatDuration(it.Length)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Track #%d out of %d", i+1, len(items)),
			Value: fmt.Sprintf("**%s** by **%s** (%s)", it.Title, it.Author, length),
		})
	}
	return embed
}

// GetEngineStats returns the engine's latest server statistics.
func (o *Orchestrator) GetEngineStats() EngineStats {
	return o.engine.Stats()
}

// Disconnect tears down a guild's session: voice connection, engine player
// and control message. This is the only path that destroys a session.
// Teardown failures are swallowed; local state always ends up consistent.
func (o *Orchestrator) Disconnect(guildID string) {
	o.mu.Lock()
	s, ok := o.sessions[guildID]
	if ok {
		delete(o.sessions, guildID)
	}
	o.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := o.engine.Destroy(guildID); err != nil {
		o.log.Debug().Err(err).Str("guild", guildID).Msg("engine destroy failed")
	}
	if err := o.voice.Leave(guildID); err != nil {
		o.log.Debug().Err(err).Str("guild", guildID).Msg("voice leave failed")
	}
	if s.view != nil {
		s.view.Delete()
	}
	s.connected = false
	s.current = nil
	s.paused = false
	s.queue.Clear()
}

// DisconnectAll tears down every live session.
func (o *Orchestrator) DisconnectAll() {
	o.mu.Lock()
	ids := make([]string, 0, len(o.sessions))
	for id := range o.sessions {
		ids = append(ids, id)
	}
	o.mu.Unlock()

	for _, id := range ids {
		o.Disconnect(id)
	}
}

// HandleVoiceMembership applies the auto-disconnect rule: a voice channel
// with an active session and zero non-bot members left is an implicit
// disconnect.
func (o *Orchestrator) HandleVoiceMembership(guildID, channelID string, nonBotMembers int) {
	if nonBotMembers > 0 {
		return
	}
	s := o.lookup(guildID)
	if s == nil {
		return
	}
	s.mu.Lock()
	bound := s.connected && s.voiceChannelID == channelID
	s.mu.Unlock()
	if bound {
		o.log.Info().Str("guild", guildID).Msg("voice channel emptied, disconnecting")
		o.Disconnect(guildID)
	}
}

// Run consumes engine lifecycle events until the context or channel closes.
func (o *Orchestrator) Run(ctx context.Context, events <-chan EngineEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			o.HandleEngineEvent(ev)
		}
	}
}

// HandleEngineEvent dispatches one engine lifecycle event.
func (o *Orchestrator) HandleEngineEvent(ev EngineEvent) {
	switch ev.Type {
	case EventTrackEnd:
		o.handleTrackEnd(ev.GuildID)
	case EventTrackException, EventTrackStuck:
		o.handleTrackIssue(ev.GuildID, ev.Message)
	case EventPlayerUpdate:
		o.handlePlayerUpdate(ev)
	}
}

// handleTrackEnd advances the state machine when a track finishes, whether
// naturally, by skip or after an issue. With looping on, the finished item is
// rewound and resubmitted unchanged.
func (o *Orchestrator) handleTrackEnd(guildID string) {
	s := o.lookup(guildID)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}

	if s.looping {
		s.current.ResetPosition()
		if err := o.engine.Play(guildID, s.current, false); err != nil {
			o.log.Warn().Err(err).Str("guild", guildID).Msg("loop resubmit failed")
			o.notifier.Warning(s.textChannelID, embedFooter,
				fmt.Sprintf("Could not restart **%s**", s.current.Title))
		}
		return
	}

	o.advanceLocked(s)
}

// advanceLocked dequeues until a track starts or the queue runs dry. Caller
// holds the session lock.
func (o *Orchestrator) advanceLocked(s *Session) {
	for {
		next, ok := s.queue.TryDequeue()
		if !ok {
			s.current = nil
			s.paused = false
			if s.view != nil {
				s.view.Delete()
			}
			return
		}
		if err := o.engine.Play(s.guildID, next, false); err != nil {
			o.log.Warn().Err(err).Str("guild", s.guildID).Str("title", next.Title).Msg("could not start next track")
			o.notifier.Warning(s.textChannelID, embedFooter,
				fmt.Sprintf("Could not start **%s**, skipping it", next.Title))
			continue
		}
		s.current = next
		s.paused = false
		o.sendPlayerLocked(s)
		return
	}
}

// handleTrackIssue reacts to exception/stuck reports: warn with the offending
// title, then force the same path as a skip.
func (o *Orchestrator) handleTrackIssue(guildID, detail string) {
	s := o.lookup(guildID)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}

	msg := fmt.Sprintf("There was a problem with a track, skipped **%s**", s.current.Title)
	o.log.Warn().Str("guild", guildID).Str("title", s.current.Title).Str("detail", detail).Msg("track issue reported")
	o.notifier.Warning(s.textChannelID, embedFooter, msg)

	if err := o.engine.Stop(guildID); err != nil {
		// The engine already dropped the track; advance directly so the
		// session does not hang on a dead current item.
		o.advanceLocked(s)
	}
}

// handlePlayerUpdate refreshes the current position. Updates while paused are
// not rendered, and an update for a torn-down session is a silent no-op.
func (o *Orchestrator) handlePlayerUpdate(ev EngineEvent) {
	s := o.lookup(ev.GuildID)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.paused {
		return
	}
	s.current.Position = ev.Position

	if s.view != nil && s.renderLimit.Allow() {
		if err := s.view.Update(s.current, s.volume, s.paused, s.looping, true); err != nil {
			o.log.Debug().Err(err).Str("guild", ev.GuildID).Msg("position render failed")
		}
	}
}

// sendPlayerLocked (re)creates the control message for the current track:
// any previous message is deleted and a fresh one sent, then the control
// glyphs are attached in the background. Caller holds the session lock.
// A failed send never blocks the underlying state transition.
func (o *Orchestrator) sendPlayerLocked(s *Session) {
	if s.current == nil {
		return
	}
	if s.view == nil {
		s.view = newTrackView(s.guildID, s.textChannelID, o.msg, o.log)
	} else {
		// Delete in the channel the message was sent to before retargeting;
		// the session's text channel may have moved since.
		s.view.Delete()
		s.view.channelID = s.textChannelID
	}

	if err := s.view.Update(s.current, s.volume, s.paused, s.looping, false); err != nil {
		o.log.Warn().Err(err).Str("guild", s.guildID).Msg("control message build failed")
		return
	}
	if err := s.view.Send(); err != nil {
		o.log.Warn().Err(err).Str("guild", s.guildID).Msg("control message send failed")
		return
	}
	if o.attach != nil {
		o.attach(s.textChannelID, s.view.MessageID())
	}
}
