package scrobble

import (
	"time"

	"github.com/shoalaudio/shoal/internal/errs"
)

// Link runs the desktop authorization flow against Last.fm: request a
// token, open the authorize page in the browser, wait for the local
// callback, then exchange the token for a session. The caller persists
// the returned session key. Returns errs.Network errors throughout; a
// browser that cannot be opened is not fatal, the URL is returned via
// onManualURL so the caller can surface it.
func Link(client *Client, timeout time.Duration, onManualURL func(url string)) (username, sessionKey string, err error) {
	token, err := client.GetToken()
	if err != nil {
		return "", "", errs.Wrap(errs.Network, err)
	}

	server, err := StartAuthServer()
	if err != nil {
		return "", "", errs.Wrap(errs.Network, err)
	}
	defer server.Shutdown()

	url := client.AuthURL(token)
	if err := OpenBrowser(url); err != nil && onManualURL != nil {
		onManualURL(url)
	}

	select {
	case <-server.TokenChan():
	case <-time.After(timeout):
		return "", "", errs.New(errs.Network, "authorization timed out")
	}

	username, sessionKey, err = client.GetSession(token)
	if err != nil {
		return "", "", errs.Wrap(errs.Network, err)
	}
	return username, sessionKey, nil
}
