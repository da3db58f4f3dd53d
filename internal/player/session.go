package player

import (
	"sync"
	"time"

	"github.com/beatframe/beatframe/internal/queue"
	"github.com/beatframe/beatframe/internal/track"
	"golang.org/x/time/rate"
)

// Session is the live playback state for one guild: voice binding, queue,
// flags and the rendered control message. A session exists in the
// orchestrator's map exactly while a voice connection is established.
// All fields are guarded by mu; the orchestrator holds mu for the whole
// read-modify-write cycle of every mutation.
type Session struct {
	mu sync.Mutex

	guildID        string
	voiceChannelID string
	textChannelID  string
	connected      bool

	queue   *queue.Queue
	current *track.Item
	looping bool
	volume  int
	paused  bool

	view *TrackView

	// renderLimit coalesces position-update renders so a chatty engine
	// does not turn every update into a message edit.
	renderLimit *rate.Limiter
}

func newSession(guildID string, volume int) *Session {
	return &Session{
		guildID:     guildID,
		queue:       queue.New(),
		volume:      volume,
		renderLimit: rate.NewLimiter(rate.Every(5*time.Second), 1),
	}
}

// Current returns the currently playing item, or nil when idle.
func (s *Session) Current() *track.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Queue returns the session's pending-track queue.
func (s *Session) Queue() *queue.Queue {
	return s.queue
}

// Looping reports whether the current track is resubmitted on finish.
func (s *Session) Looping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.looping
}

// Volume returns the session volume in percent.
func (s *Session) Volume() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Paused reports whether playback is paused.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// VoiceChannelID returns the bound voice channel.
func (s *Session) VoiceChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceChannelID
}

// TextChannelID returns the channel the control message is rendered to.
func (s *Session) TextChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textChannelID
}
