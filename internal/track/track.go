package track

import (
	"fmt"
	"time"
)

// Kind discriminates the closed set of playable item variants. The set is
// fixed; renderers and queue logic switch on it rather than type-assert.
type Kind int

const (
	// KindCatalog is a finite track with a known length.
	KindCatalog Kind = iota
	// KindStream is a live stream with no meaningful length or position.
	KindStream
	// KindUnknown is content the resolver could not classify.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindCatalog:
		return "catalog"
	case KindStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Item is one resolved unit of playable content. Items are created by the
// upstream resolvers, owned by the queue until dequeued and then by the
// session as its current track.
type Item struct {
	ID         string // engine identifier
	Encoded    string // opaque engine payload submitted on play
	Title      string
	Author     string
	Length     time.Duration // zero for streams and unknown content
	Position   time.Duration
	URI        string
	ArtworkURL string
	Kind       Kind
}

// IsStream reports whether the item has no finite length.
func (it *Item) IsStream() bool {
	return it.Kind == KindStream
}

// ResetPosition rewinds the item so it can be resubmitted from the start.
func (it *Item) ResetPosition() {
	it.Position = 0
}

// FormatDuration renders a duration as hh:mm:ss, the form used in embeds.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
