package main

import (
	"emperror.dev/errors"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initLog builds a zap production logger behind logr. verbose enables the
// V(1) debug lines the policies emit for decay passes and promotions.
func initLog(verbose bool) (logr.Logger, error) {
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zl, err := zc.Build()
	if err != nil {
		return logr.Discard(), errors.Wrap(err, "failed to initialize zap logger")
	}
	return zapr.NewLogger(zl), nil
}
