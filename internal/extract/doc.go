// Package extract wraps the yt-dlp executable: metadata lookup, playlist
// expansion, format downloads and yt-dlp's own stream merge.
package extract
