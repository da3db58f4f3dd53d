package lavalink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/beatframe/beatframe/internal/track"
)

// LoadResult is the outcome of resolving an identifier on the node.
type LoadResult struct {
	// Kind is one of "track", "playlist", "search", "empty", "error".
	Kind         string
	PlaylistName string
	Items        []*track.Item
}

type restTrack struct {
	Encoded string `json:"encoded"`
	Info    struct {
		Identifier string `json:"identifier"`
		Author     string `json:"author"`
		Length     int64  `json:"length"`
		IsStream   bool   `json:"isStream"`
		Title      string `json:"title"`
		URI        string `json:"uri"`
		ArtworkURL string `json:"artworkUrl"`
	} `json:"info"`
}

type loadResponse struct {
	LoadType string          `json:"loadType"`
	Data     json.RawMessage `json:"data"`
}

// LoadTracks resolves a URL or search query into playable items via the
// node's REST endpoint.
func (c *Client) LoadTracks(ctx context.Context, identifier string) (*LoadResult, error) {
	endpoint := c.cfg.restURL("/v4/loadtracks?identifier=" + url.QueryEscape(identifier))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.cfg.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load tracks request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("load tracks http %d", resp.StatusCode)
	}

	var parsed loadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("undecodable load response: %w", err)
	}

	result := &LoadResult{Kind: parsed.LoadType}
	switch parsed.LoadType {
	case "track":
		var t restTrack
		if err := json.Unmarshal(parsed.Data, &t); err != nil {
			return nil, err
		}
		result.Items = []*track.Item{toItem(&t)}
	case "search":
		var ts []restTrack
		if err := json.Unmarshal(parsed.Data, &ts); err != nil {
			return nil, err
		}
		for i := range ts {
			result.Items = append(result.Items, toItem(&ts[i]))
		}
	case "playlist":
		var pl struct {
			Info struct {
				Name string `json:"name"`
			} `json:"info"`
			Tracks []restTrack `json:"tracks"`
		}
		if err := json.Unmarshal(parsed.Data, &pl); err != nil {
			return nil, err
		}
		result.PlaylistName = pl.Info.Name
		for i := range pl.Tracks {
			result.Items = append(result.Items, toItem(&pl.Tracks[i]))
		}
	case "empty", "error":
		// No items; the caller decides how to report it.
	default:
		return nil, fmt.Errorf("unknown load type %q", parsed.LoadType)
	}
	return result, nil
}

func toItem(t *restTrack) *track.Item {
	kind := track.KindCatalog
	switch {
	case t.Info.IsStream:
		kind = track.KindStream
	case t.Info.Identifier == "":
		kind = track.KindUnknown
	}
	return &track.Item{
		ID:         t.Info.Identifier,
		Encoded:    t.Encoded,
		Title:      t.Info.Title,
		Author:     t.Info.Author,
		Length:     time.Duration(t.Info.Length) * time.Millisecond,
		URI:        t.Info.URI,
		ArtworkURL: t.Info.ArtworkURL,
		Kind:       kind,
	}
}
