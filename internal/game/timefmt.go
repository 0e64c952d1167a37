package game

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatTime renders d as M:SS.mmm, e.g. 0:07.004 or 12:03.500.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Round(time.Millisecond).Milliseconds()
	minutes := ms / 60000
	rem := ms % 60000
	return fmt.Sprintf("%d:%02d.%03d", minutes, rem/1000, rem%1000)
}

// ParseTime reverses FormatTime.
func ParseTime(s string) (time.Duration, error) {
	minStr, secStr, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("parse time %q: missing ':'", s)
	}
	minutes, err := strconv.ParseInt(minStr, 10, 64)
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("parse time %q: bad minutes", s)
	}
	whole, frac, ok := strings.Cut(secStr, ".")
	if !ok || len(whole) != 2 || len(frac) != 3 {
		return 0, fmt.Errorf("parse time %q: want SS.mmm", s)
	}
	sec, err := strconv.Atoi(whole)
	if err != nil || sec < 0 || sec >= 60 {
		return 0, fmt.Errorf("parse time %q: bad seconds", s)
	}
	milli, err := strconv.Atoi(frac)
	if err != nil || milli < 0 {
		return 0, fmt.Errorf("parse time %q: bad milliseconds", s)
	}
	return time.Duration(minutes)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(milli)*time.Millisecond, nil
}

// SecondsPerRound is the average answer time, gameTime / rounds / 1000 in ms.
func SecondsPerRound(gameTime time.Duration, rounds int) float64 {
	if rounds <= 0 {
		return 0
	}
	return float64(gameTime) / float64(time.Millisecond) / float64(rounds) / 1000
}
