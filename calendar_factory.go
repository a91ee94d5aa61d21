package main

import (
	"database/sql"
	"fmt"
	"os"
)

// CalendarFactory handles creation of the configured calendar provider
type CalendarFactory struct {
	config *Config
	db     *sql.DB
}

// NewCalendarFactory creates a new calendar factory instance
func NewCalendarFactory(config *Config, db *sql.DB) *CalendarFactory {
	return &CalendarFactory{
		config: config,
		db:     db,
	}
}

// CreateCalendarProvider creates the provider named in the configuration
func (cf *CalendarFactory) CreateCalendarProvider() (CalendarProvider, error) {
	switch cf.config.Provider {
	case "google":
		if oauthConfig == nil {
			initOAuthConfig(cf.config)
		}
		return NewGoogleCalendarProvider(oauthConfig, NewTokenStore(cf.db), cf.config.Account,
			promptForAuthCode(os.Stdin), cf.config.location()), nil

	case "caldav":
		server := cf.config.CalDAV
		if server.ServerURL == "" {
			return nil, fmt.Errorf("no server_url configured in [caldav]")
		}
		return NewCalDAVProvider(server.ServerURL, server.Username, server.Password, nil, cf.config.location())

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cf.config.Provider)
	}
}

// Session bundles the components that share one permission state.
type Session struct {
	Provider CalendarProvider
	Gate     *PermissionGate
	Reader   *CalendarReader
	Writer   *CalendarWriter
}

func newSession(provider CalendarProvider, config *Config) *Session {
	gate := NewPermissionGate(provider)
	return &Session{
		Provider: provider,
		Gate:     gate,
		Reader:   NewCalendarReader(provider, gate, NewFetchThrottle(config.fetchInterval()), config.windowPolicy()),
		Writer:   NewCalendarWriter(provider, gate),
	}
}

// NewSession creates the configured provider and wires a session around it
func (cf *CalendarFactory) NewSession() (*Session, error) {
	provider, err := cf.CreateCalendarProvider()
	if err != nil {
		return nil, err
	}
	return newSession(provider, cf.config), nil
}
