package wire

import (
	"bytes"
	"strings"

	"github.com/shuretools/shurelink/pkg/device"
)

// SplitReplies re-splits a drained read buffer into candidate reply frames.
// The device has no reliable line discipline under load: several frames can
// arrive concatenated in one segment, and a frame can be split across
// segments. Splitting on the reply keyword recovers one candidate per
// solicited reply; each candidate still has to pass ParseReply.
func SplitReplies(f device.Family, raw string) []string {
	marker := "< " + f.ReplyKeyword() + " "

	// Anything before the first marker is not a reply (an unsolicited
	// SAMPLE, noise, or a torn frame tail) and is dropped.
	idx := strings.Index(raw, marker)
	if idx < 0 {
		return nil
	}

	parts := strings.Split(raw[idx:], marker)
	frames := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		frames = append(frames, marker+p)
	}
	return frames
}

// SplitLines extracts complete newline-terminated lines from buf, returning
// the lines and the unconsumed tail. Used by the streaming ingest, where
// partial trailing bytes must stay buffered across reads.
func SplitLines(buf []byte) (lines []string, rest []byte) {
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			return lines, buf
		}
		line := strings.TrimRight(string(buf[:i]), "\r")
		if s := strings.TrimSpace(line); s != "" {
			lines = append(lines, s)
		}
		buf = buf[i+1:]
	}
}
