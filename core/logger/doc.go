// Package logger provides a structured logging facility based on Zap.
//
// New builds a development or production logger from Config. When Config.File
// is set, entries are also written as JSON to a file rotated by lumberjack;
// the end-of-run record is meant to be parsed from that file.
//
// WithRayID attaches the request's RayID from a Fiber context so that every
// entry of one HTTP request can be correlated.
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
