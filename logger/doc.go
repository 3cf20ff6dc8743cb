// Package logger provides structured logging for gstclient using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Libraries in this module
// default to Nop() so nothing is written unless a caller opts in.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&cfg, "gstctl").WithComponent("gstd")
//	log.Debug("request sent", logger.Fields("path", "pipelines"))
package logger
