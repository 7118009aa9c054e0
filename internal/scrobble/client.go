package scrobble

import (
	"errors"
	"fmt"

	"github.com/shkh/lastfm-go/lastfm"
)

// ErrNotAuthenticated is returned when an operation requires authentication.
var ErrNotAuthenticated = errors.New("not authenticated")

// Remote is the listening-history service surface the pipeline submits to.
type Remote interface {
	Scrobble(rec Record) error
	ScrobbleBatch(recs []Record) error
	UpdateNowPlaying(rec Record) error
}

// Client wraps the Last.fm API for scrobbling and authentication.
type Client struct {
	api        *lastfm.Api
	apiKey     string
	apiSecret  string
	sessionKey string
}

// NewClient creates a Last.fm client with the given API credentials.
func NewClient(apiKey, apiSecret string) *Client {
	return &Client{
		api:       lastfm.New(apiKey, apiSecret),
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// SetSessionKey sets the authenticated session key.
func (c *Client) SetSessionKey(key string) {
	c.sessionKey = key
	c.api.SetSession(key)
}

// IsAuthenticated returns true if a session key is set.
func (c *Client) IsAuthenticated() bool {
	return c.sessionKey != ""
}

// GetToken requests an authentication token from Last.fm.
func (c *Client) GetToken() (string, error) {
	result, err := c.api.GetToken()
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return result, nil
}

// AuthURL returns the URL for user authorization (desktop auth flow).
func (c *Client) AuthURL(token string) string {
	return fmt.Sprintf("https://www.last.fm/api/auth/?api_key=%s&token=%s", c.apiKey, token)
}

// GetSession exchanges an authorized token for a session key and the
// account's username.
func (c *Client) GetSession(token string) (username, sessionKey string, err error) {
	err = c.api.LoginWithToken(token)
	if err != nil {
		return "", "", fmt.Errorf("get session: %w", err)
	}

	sessionKey = c.api.GetSessionKey()
	c.sessionKey = sessionKey

	userInfo, err := c.api.User.GetInfo(nil)
	if err != nil {
		// Session is valid but couldn't get username - still return session
		return "unknown", sessionKey, nil //nolint:nilerr // username is optional
	}

	return userInfo.Name, sessionKey, nil
}

// UserInfo returns playcount and registration data for the linked account.
type UserInfo struct {
	Name      string
	PlayCount string
	URL       string
}

// GetUserInfo fetches account info for the authenticated user.
func (c *Client) GetUserInfo() (*UserInfo, error) {
	if !c.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	info, err := c.api.User.GetInfo(nil)
	if err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}
	return &UserInfo{
		Name:      info.Name,
		PlayCount: info.PlayCount,
		URL:       info.Url,
	}, nil
}

// UpdateNowPlaying sends a "now playing" notification to Last.fm.
func (c *Client) UpdateNowPlaying(rec Record) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	params := lastfm.P{
		"artist": rec.Artist,
		"track":  rec.Track,
	}
	addOptionalParams(params, rec)

	_, err := c.api.Track.UpdateNowPlaying(params)
	if err != nil {
		return fmt.Errorf("update now playing: %w", err)
	}
	return nil
}

// Scrobble submits a track play to Last.fm.
func (c *Client) Scrobble(rec Record) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	params := lastfm.P{
		"artist":    rec.Artist,
		"track":     rec.Track,
		"timestamp": rec.Timestamp.Unix(),
	}
	addOptionalParams(params, rec)

	_, err := c.api.Track.Scrobble(params)
	if err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	return nil
}

// MaxBatchSize is the Last.fm limit on scrobbles per batch call.
const MaxBatchSize = 50

// ScrobbleBatch submits multiple track plays to Last.fm in one call.
// Batches are capped at MaxBatchSize; callers split larger sets.
func (c *Client) ScrobbleBatch(recs []Record) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if len(recs) == 0 {
		return nil
	}
	if len(recs) > MaxBatchSize {
		return fmt.Errorf("batch of %d exceeds the %d scrobble limit", len(recs), MaxBatchSize)
	}

	artists := make([]string, len(recs))
	tracks := make([]string, len(recs))
	timestamps := make([]int64, len(recs))
	albums := make([]string, len(recs))

	for i, r := range recs {
		artists[i] = r.Artist
		tracks[i] = r.Track
		timestamps[i] = r.Timestamp.Unix()
		albums[i] = r.Album
	}

	params := lastfm.P{
		"artist":    artists,
		"track":     tracks,
		"timestamp": timestamps,
		"album":     albums,
	}

	_, err := c.api.Track.Scrobble(params)
	if err != nil {
		return fmt.Errorf("batch scrobble: %w", err)
	}
	return nil
}

func addOptionalParams(params lastfm.P, rec Record) {
	if rec.Album != "" {
		params["album"] = rec.Album
	}
	if rec.AlbumArtist != "" && rec.AlbumArtist != rec.Artist {
		params["albumArtist"] = rec.AlbumArtist
	}
	if rec.TrackNumber > 0 {
		params["trackNumber"] = rec.TrackNumber
	}
	if rec.DurationSecs > 0 {
		params["duration"] = rec.DurationSecs
	}
}

// Verify Client implements Remote at compile time.
var _ Remote = (*Client)(nil)
