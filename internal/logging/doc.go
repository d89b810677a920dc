// Package logging provides the leveled logger shared by the vid2pdf service
// and command line tool.
//
// It supports the following log levels:
//   - DEBUG: per-frame selection decisions and staging details
//   - INFO: conversion summaries and startup sections
//   - WARN: recoverable conditions (cleanup failures, fallbacks)
//   - ERROR: failed conversions and request errors
//   - FATAL: configuration errors that terminate the process
//
// The level is read once from the DEBUG or LOG_LEVEL environment variables
// and can be overridden at runtime with SetLevel (the CLI's -v flag does this).
package logging
