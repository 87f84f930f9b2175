// Package ui renders command lifecycle events for human-readable console
// sessions, bridging execshell observers onto zap console logging.
package ui
