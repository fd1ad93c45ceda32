// File: config/logging.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Logger construction from config. Level changes are applied in place
// on hot-reload; the formatter is fixed per boot.

package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ParseLevel maps a config level string to a logrus level.
func ParseLevel(s string) (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// NewLogger builds the daemon logger per the Log section.
func NewLogger(c Log) (*logrus.Logger, error) {
	lvl, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetLevel(lvl)
	if c.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}
