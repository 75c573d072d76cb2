// Package encode shells out to ffmpeg to multiplex a video-only and an
// audio-only stream into one mp4.
package encode
