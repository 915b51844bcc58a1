// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging constructs the zap logger shared by the pipeline stages.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger writing to stderr. Verbose mode uses the development
// config at debug level; otherwise warnings and above are shown so the
// command's own status lines stay readable.
func New(verbose bool, appVersion string) (*zap.Logger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.InitialFields = map[string]interface{}{
		"appName":    "codebinder",
		"appVersion": appVersion,
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger, nil
}
