package main

import (
	"fmt"
	"net/url"
	"strings"
)

// signalURL turns the server base URL into its websocket endpoint.
func signalURL(server, token string) (string, error) {
	u, err := baseURL(server)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func roomsURL(server string) (string, error) {
	u, err := baseURL(server)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/rooms"
	return u.String(), nil
}

func baseURL(server string) (*url.URL, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", server, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing host", server)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("invalid server url %q: unsupported scheme %s", server, u.Scheme)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
