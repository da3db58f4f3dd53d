package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/beatframe/beatframe/internal/track"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu        sync.Mutex
	played    []string
	stops     int
	pauses    []bool
	volumes   []int
	destroys  int
	playErr   error
	stopErr   error
	pauseErr  error
	volumeErr error
	failIDs   map[string]bool
	stats     EngineStats
}

func (e *fakeEngine) Play(guildID string, it *track.Item, paused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playErr != nil {
		return e.playErr
	}
	if e.failIDs[it.ID] {
		return errors.New("engine refused track")
	}
	e.played = append(e.played, it.ID)
	return nil
}

func (e *fakeEngine) Stop(guildID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopErr != nil {
		return e.stopErr
	}
	e.stops++
	return nil
}

func (e *fakeEngine) Pause(guildID string, paused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pauseErr != nil {
		return e.pauseErr
	}
	e.pauses = append(e.pauses, paused)
	return nil
}

func (e *fakeEngine) SetVolume(guildID string, volume int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.volumeErr != nil {
		return e.volumeErr
	}
	e.volumes = append(e.volumes, volume)
	return nil
}

func (e *fakeEngine) Destroy(guildID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.destroys++
	return nil
}

func (e *fakeEngine) Stats() EngineStats { return e.stats }

func (e *fakeEngine) playedIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.played...)
}

type fakeVoice struct {
	mu      sync.Mutex
	joins   []string
	leaves  []string
	joinErr error
}

func (v *fakeVoice) Join(guildID, channelID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.joinErr != nil {
		return v.joinErr
	}
	v.joins = append(v.joins, guildID+":"+channelID)
	return nil
}

func (v *fakeVoice) Leave(guildID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.leaves = append(v.leaves, guildID)
	return nil
}

type fakeMessenger struct {
	mu      sync.Mutex
	sends   int
	edits   int
	embeds  []*discordgo.MessageEmbed
	deletes []string // channelID/messageID
	sendErr error
	nextID  int
}

func (m *fakeMessenger) SendEmbed(channelID string, embed *discordgo.MessageEmbed) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sends++
	m.embeds = append(m.embeds, embed)
	m.nextID++
	return fmt.Sprintf("msg-%d", m.nextID), nil
}

func (m *fakeMessenger) EditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits++
	return nil
}

func (m *fakeMessenger) DeleteMessage(channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, channelID+"/"+messageID)
	return nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	successes []string
	warnings  []string
}

func (n *fakeNotifier) Success(channelID, title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, body)
}

func (n *fakeNotifier) Warning(channelID, title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, body)
}

type fakeLyrics struct {
	text string
	err  error
}

func (l *fakeLyrics) Lyrics(ctx context.Context, author, title string) (string, error) {
	return l.text, l.err
}

type fakeResolver struct {
	channels map[string]string
}

func (r *fakeResolver) UserVoiceChannel(guildID, userID string) (string, bool) {
	ch, ok := r.channels[userID]
	return ch, ok
}

type fixture struct {
	orch     *Orchestrator
	engine   *fakeEngine
	voice    *fakeVoice
	msg      *fakeMessenger
	notes    *fakeNotifier
	resolver *fakeResolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		engine:   &fakeEngine{failIDs: map[string]bool{}},
		voice:    &fakeVoice{},
		msg:      &fakeMessenger{},
		notes:    &fakeNotifier{},
		resolver: &fakeResolver{channels: map[string]string{}},
	}
	f.orch = NewOrchestrator(Deps{
		Engine:        f.engine,
		Voice:         f.voice,
		Messenger:     f.msg,
		Notifier:      f.notes,
		Lyrics:        &fakeLyrics{text: "la la la"},
		Resolver:      f.resolver,
		Log:           zerolog.Nop(),
		DefaultVolume: 50,
	})
	return f
}

func item(id string) *track.Item {
	return &track.Item{ID: id, Encoded: "enc-" + id, Title: "Track " + id, Author: "Artist", Kind: track.KindCatalog, Length: 180e9}
}

const (
	guild = "g1"
	vc    = "vc1"
	tc    = "tc1"
)

func TestAddTrackStartsWhenIdle(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))

	assert.Equal(t, []string{"a"}, f.engine.playedIDs())
	assert.Equal(t, []string{guild + ":" + vc}, f.voice.joins)
	assert.Equal(t, 1, f.msg.sends, "starting a track must render a control message")

	s := f.orch.lookup(guild)
	require.NotNil(t, s)
	assert.Equal(t, "a", s.Current().ID)
	assert.Equal(t, 0, s.Queue().Len())
}

func TestAddTrackQueuesWhilePlaying(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))

	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("b")))

	assert.Equal(t, []string{"a"}, f.engine.playedIDs(), "a queued track must not be submitted")
	assert.Equal(t, 1, f.orch.lookup(guild).Queue().Len())

	// The notice is its own embed; the control message is not re-rendered.
	require.Equal(t, 2, f.msg.sends)
	notice := f.msg.embeds[1]
	assert.Contains(t, notice.Description, "Added the following track to the queue")
	requireField(t, notice, "Title", "Track b")
	requireField(t, notice, "Author", "Artist")
	requireField(t, notice, "Stream", "false")
	assert.Zero(t, f.msg.edits)
}

func TestAddTrackRejectedByEngine(t *testing.T) {
	f := newFixture(t)
	f.engine.playErr = errors.New("boom")

	err := f.orch.AddTrack(guild, vc, tc, item("a"))

	require.Error(t, err)
	assert.Nil(t, f.orch.lookup(guild).Current(), "a rejected play must not claim a current track")
	assert.NotEmpty(t, f.notes.warnings)
}

func TestAddPlaylistStartsFirstQueuesRest(t *testing.T) {
	f := newFixture(t)

	items := []*track.Item{item("a"), item("b"), item("c")}
	require.NoError(t, f.orch.AddPlaylist(guild, vc, tc, items))

	assert.Equal(t, []string{"a"}, f.engine.playedIDs())
	assert.Equal(t, 2, f.orch.lookup(guild).Queue().Len())
}

func TestVoiceJoinFailure(t *testing.T) {
	f := newFixture(t)
	f.voice.joinErr = errors.New("no permission")

	err := f.orch.AddTrack(guild, vc, tc, item("a"))

	require.Error(t, err)
	assert.Nil(t, f.orch.lookup(guild), "a failed join must not leave a half-made session")
}

func TestConnectIsIdempotent(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Connect(guild, vc, tc)
	require.NoError(t, err)
	_, err = f.orch.Connect(guild, vc, tc)
	require.NoError(t, err)

	assert.Len(t, f.voice.joins, 1, "connecting twice to the same channel must join once")
	assert.Equal(t, 1, f.orch.Sessions())
}

func TestConnectMovesChannel(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Connect(guild, vc, tc)
	require.NoError(t, err)
	_, err = f.orch.Connect(guild, "vc2", tc)
	require.NoError(t, err)

	assert.Equal(t, []string{guild + ":" + vc, guild + ":vc2"}, f.voice.joins)
	assert.Equal(t, "vc2", f.orch.lookup(guild).VoiceChannelID())
}

func TestTrackEndAdvancesQueue(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("b")))

	f.orch.HandleEngineEvent(EngineEvent{Type: EventTrackEnd, GuildID: guild, Reason: "finished"})

	assert.Equal(t, []string{"a", "b"}, f.engine.playedIDs())
	assert.Equal(t, "b", f.orch.lookup(guild).Current().ID)
	assert.Equal(t, 2, f.msg.sends, "each started track gets a fresh control message")
}

func TestTrackEndEmptyQueueGoesIdle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))

	f.orch.HandleEngineEvent(EngineEvent{Type: EventTrackEnd, GuildID: guild, Reason: "finished"})

	s := f.orch.lookup(guild)
	require.NotNil(t, s, "going idle must not tear down the session")
	assert.Nil(t, s.Current())
	assert.False(t, s.Paused())
	assert.Equal(t, []string{tc + "/msg-1"}, f.msg.deletes, "idle must remove the control message")
}

func TestTrackEndWithLoopReplaysSameTrack(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("b")))

	looping, err := f.orch.ToggleLoop(guild, vc, tc)
	require.NoError(t, err)
	require.True(t, looping)

	s := f.orch.lookup(guild)
	s.mu.Lock()
	s.current.Position = 90e9
	s.mu.Unlock()

	f.orch.HandleEngineEvent(EngineEvent{Type: EventTrackEnd, GuildID: guild, Reason: "finished"})

	assert.Equal(t, []string{"a", "a"}, f.engine.playedIDs(), "loop must resubmit the finished track")
	assert.Zero(t, s.Current().Position, "loop must rewind before resubmitting")
	assert.Equal(t, 1, s.Queue().Len(), "loop must leave the queue untouched")
}

func TestTrackEndSkipsUnplayableItems(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("bad")))
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("c")))
	f.engine.failIDs["bad"] = true

	f.orch.HandleEngineEvent(EngineEvent{Type: EventTrackEnd, GuildID: guild, Reason: "finished"})

	assert.Equal(t, []string{"a", "c"}, f.engine.playedIDs())
	assert.Equal(t, "c", f.orch.lookup(guild).Current().ID)
	assert.NotEmpty(t, f.notes.warnings)
}

func TestSkipStopsOnlyWhilePlaying(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Connect(guild, vc, tc)
	require.NoError(t, err)

	require.NoError(t, f.orch.Skip(guild, vc, tc))
	assert.Zero(t, f.engine.stops, "skip with nothing playing must not reach the engine")

	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))
	require.NoError(t, f.orch.Skip(guild, vc, tc))
	assert.Equal(t, 1, f.engine.stops)
}

func TestPauseResumeCycle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))

	require.NoError(t, f.orch.Pause(guild, vc, tc))
	assert.True(t, f.orch.lookup(guild).Paused())

	// Pausing twice must not reach the engine again.
	require.NoError(t, f.orch.Pause(guild, vc, tc))
	assert.Equal(t, []bool{true}, f.engine.pauses)

	require.NoError(t, f.orch.Resume(guild, vc, tc))
	assert.False(t, f.orch.lookup(guild).Paused())
	assert.Equal(t, []bool{true, false}, f.engine.pauses)
}

func TestPauseWhileIdleIsNoop(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Connect(guild, vc, tc)
	require.NoError(t, err)

	require.NoError(t, f.orch.Pause(guild, vc, tc))
	assert.Empty(t, f.engine.pauses)
	assert.False(t, f.orch.lookup(guild).Paused())
}

func TestPauseEngineFailureKeepsFlag(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))
	f.engine.pauseErr = errors.New("node gone")

	err := f.orch.Pause(guild, vc, tc)

	require.Error(t, err)
	assert.False(t, f.orch.lookup(guild).Paused(), "a failed pause must not flip the flag")
}

func TestSetVolumeClampsAndStores(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Connect(guild, vc, tc)
	require.NoError(t, err)

	require.NoError(t, f.orch.SetVolume(guild, vc, tc, 500))
	assert.Equal(t, MaxVolume, f.orch.lookup(guild).Volume())
	assert.Empty(t, f.engine.volumes, "volume while idle is stored, not submitted")

	require.NoError(t, f.orch.SetVolume(guild, vc, tc, -20))
	assert.Equal(t, MinVolume, f.orch.lookup(guild).Volume())

	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))
	require.NoError(t, f.orch.SetVolume(guild, vc, tc, 80))
	assert.Equal(t, []int{80}, f.engine.volumes)
}

func TestClearEmptiesQueueAndStopsCurrent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("b")))

	require.NoError(t, f.orch.Clear(guild, vc, tc))

	assert.Equal(t, 0, f.orch.lookup(guild).Queue().Len())
	assert.Equal(t, 1, f.engine.stops)
}

func TestTrackIssueWarnsAndSkips(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("b")))

	f.orch.HandleEngineEvent(EngineEvent{Type: EventTrackException, GuildID: guild, Message: "decode failed"})

	require.NotEmpty(t, f.notes.warnings)
	assert.Contains(t, f.notes.warnings[0], "Track a")
	assert.Equal(t, 1, f.engine.stops, "the end event from the stop drives the advance")
}

func TestTrackIssueWithDeadEngineAdvancesDirectly(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("b")))
	f.engine.stopErr = errors.New("node gone")

	f.orch.HandleEngineEvent(EngineEvent{Type: EventTrackStuck, GuildID: guild})

	assert.Equal(t, "b", f.orch.lookup(guild).Current().ID)
}

func TestPlayerUpdateTracksPosition(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))

	f.orch.HandleEngineEvent(EngineEvent{Type: EventPlayerUpdate, GuildID: guild, Position: 42e9})

	assert.Equal(t, int64(42e9), int64(f.orch.lookup(guild).Current().Position))
}

func TestPlayerUpdateWhilePausedIsNotRendered(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))
	require.NoError(t, f.orch.Pause(guild, vc, tc))

	f.orch.HandleEngineEvent(EngineEvent{Type: EventPlayerUpdate, GuildID: guild, Position: 30e9})

	assert.Zero(t, f.msg.edits, "a paused session must not re-render")
	assert.Zero(t, f.orch.lookup(guild).Current().Position, "a paused session ignores position updates")
}

func TestPlayerUpdatesCoalesceIntoOneRender(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))

	f.orch.HandleEngineEvent(EngineEvent{Type: EventPlayerUpdate, GuildID: guild, Position: 10e9})
	f.orch.HandleEngineEvent(EngineEvent{Type: EventPlayerUpdate, GuildID: guild, Position: 15e9})

	assert.Equal(t, 1, f.msg.edits, "back-to-back updates coalesce into one edit")
	assert.Equal(t, int64(15e9), int64(f.orch.lookup(guild).Current().Position), "position still tracks every update")
}

func TestControlMessageDeletedInOriginChannel(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, "text-1", item("a")))
	require.NoError(t, f.orch.AddTrack(guild, vc, "text-2", item("b")))

	f.orch.HandleEngineEvent(EngineEvent{Type: EventTrackEnd, GuildID: guild, Reason: "finished"})

	assert.Equal(t, []string{"text-1/msg-1"}, f.msg.deletes,
		"the old control message lives in the channel it was sent to")
	assert.Equal(t, "text-2", f.orch.lookup(guild).TextChannelID())
}

func TestPlayerUpdateForUnknownGuildIsNoop(t *testing.T) {
	f := newFixture(t)

	f.orch.HandleEngineEvent(EngineEvent{Type: EventPlayerUpdate, GuildID: "nope", Position: 1e9})

	assert.Zero(t, f.orch.Sessions())
}

func TestDisconnectTearsDownEverything(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("b")))

	f.orch.Disconnect(guild)

	assert.Nil(t, f.orch.lookup(guild))
	assert.Equal(t, 1, f.engine.destroys)
	assert.Equal(t, []string{guild}, f.voice.leaves)
	assert.Equal(t, []string{tc + "/msg-1"}, f.msg.deletes)

	// Stale engine events after teardown must be silent no-ops.
	f.orch.HandleEngineEvent(EngineEvent{Type: EventTrackEnd, GuildID: guild, Reason: "stopped"})
	f.orch.HandleEngineEvent(EngineEvent{Type: EventPlayerUpdate, GuildID: guild, Position: 5e9})
	assert.Equal(t, []string{"a"}, f.engine.playedIDs())
}

func TestDisconnectUnknownGuildIsNoop(t *testing.T) {
	f := newFixture(t)

	f.orch.Disconnect("nope")

	assert.Zero(t, f.engine.destroys)
	assert.Empty(t, f.voice.leaves)
}

func TestDisconnectAll(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack("g1", vc, tc, item("a")))
	require.NoError(t, f.orch.AddTrack("g2", vc, tc, item("b")))

	f.orch.DisconnectAll()

	assert.Zero(t, f.orch.Sessions())
	assert.Equal(t, 2, f.engine.destroys)
}

func TestCommandAfterDisconnectStartsFresh(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))
	f.orch.Disconnect(guild)

	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("b")))

	assert.Equal(t, []string{"a", "b"}, f.engine.playedIDs())
	assert.Len(t, f.voice.joins, 2, "a command after disconnect must rejoin voice")
}

func TestEmptyVoiceChannelDisconnects(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))

	f.orch.HandleVoiceMembership(guild, vc, 0)

	assert.Nil(t, f.orch.lookup(guild))
	assert.Equal(t, []string{guild}, f.voice.leaves)
}

func TestOccupiedVoiceChannelStaysConnected(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))

	f.orch.HandleVoiceMembership(guild, vc, 2)
	f.orch.HandleVoiceMembership(guild, "other-channel", 0)

	assert.NotNil(t, f.orch.lookup(guild))
}

func TestGetLyricsDegradesOnFailure(t *testing.T) {
	f := newFixture(t)
	f.orch.lyrics = &fakeLyrics{err: errors.New("api down")}
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))

	text, err := f.orch.GetLyrics(context.Background(), guild, vc, tc)

	require.NoError(t, err)
	assert.Contains(t, text, "No lyrics found for")
}

func TestGetLyricsWhileIdle(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Connect(guild, vc, tc)
	require.NoError(t, err)

	text, err := f.orch.GetLyrics(context.Background(), guild, vc, tc)

	require.NoError(t, err)
	assert.Equal(t, "Nothing is playing", text)
}

func TestSendQueueViewEmpty(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Connect(guild, vc, tc)
	require.NoError(t, err)

	require.NoError(t, f.orch.SendQueueView(guild, vc, tc))

	require.Len(t, f.notes.successes, 1)
	assert.Contains(t, f.notes.successes[0], "empty")
	assert.Zero(t, f.msg.sends)
}

func TestSendQueueViewWithItems(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("a")))
	require.NoError(t, f.orch.AddTrack(guild, vc, tc, item("b")))

	sendsBefore := f.msg.sends
	require.NoError(t, f.orch.SendQueueView(guild, vc, tc))

	assert.Equal(t, sendsBefore+1, f.msg.sends)
}

func TestQueueEmbedCapsListedTracks(t *testing.T) {
	items := make([]*track.Item, queueViewLimit+5)
	for i := range items {
		items[i] = item(fmt.Sprintf("t%d", i))
	}

	embed := buildQueueEmbed(items)

	require.Len(t, embed.Fields, queueViewLimit+1)
	assert.Equal(t, fmt.Sprintf("Track #1 out of %d", len(items)), embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[queueViewLimit].Value, "and 5 more")
}
