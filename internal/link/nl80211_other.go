// internal/link/nl80211_other.go
//go:build !linux

package link

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var errNL80211Unsupported = errors.New("nl80211 station: linux only")

// NL80211Station is unavailable off Linux; use the sim driver.
type NL80211Station struct{}

func NewNL80211Station(string, *zap.SugaredLogger) (*NL80211Station, error) {
	return nil, errNL80211Unsupported
}

func (*NL80211Station) Start(context.Context, Credentials) error { return errNL80211Unsupported }
func (*NL80211Station) Associate() error                       { return errNL80211Unsupported }
func (*NL80211Station) Events() <-chan Event                   { return nil }
func (*NL80211Station) Close() error                           { return nil }
