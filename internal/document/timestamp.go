package document

import "fmt"

// TimestampSeconds returns the whole second a frame falls in.
func TimestampSeconds(frameIndex, fps int) int {
	if fps < 1 {
		return 0
	}
	return frameIndex / fps
}

// FormatTimestamp renders seconds as zero-padded HH:MM:SS. Hours are not
// wrapped, so 100 hours prints as 100:00:00.
func FormatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
