package download

// Package download implements the download pipeline: resolve a request,
// fetch each entry with yt-dlp (video then audio), mux the streams with
// ffmpeg, clean up intermediates and record history. One request runs at a
// time; progress reaches the UI through an Observer.
