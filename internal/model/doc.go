// Package model defines domain data structures used across the app: download
// requests, extracted metadata, playlist progress, history entries and status
// enums. Structures are plain values so they can be handed to the UI without
// locking.
package model
