package display

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultDuration      = time.Second
	DefaultFrameInterval = 50 * time.Millisecond
)

var displayNumberPattern = regexp.MustCompile(`^([^\d.\-]*)(-?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.(\d+))?)([^\d]*)$`)

// Value is a display string split around its numeric magnitude, e.g. "$1,250.00"
// becomes prefix "$", number 1250, places 2, grouped.
type Value struct {
	Prefix  string
	Number  decimal.Decimal
	Suffix  string
	Places  int32
	Grouped bool
}

// ParseDisplayValue splits s into prefix, number, suffix and decimal places.
// It reports false for strings with no single embedded number.
func ParseDisplayValue(s string) (Value, bool) {
	trimmed := strings.TrimSpace(s)
	m := displayNumberPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Value{}, false
	}
	raw := m[2]
	grouped := strings.Contains(raw, ",")
	number, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return Value{}, false
	}
	return Value{
		Prefix:  m[1],
		Number:  number,
		Suffix:  m[4],
		Places:  int32(len(m[3])),
		Grouped: grouped,
	}, true
}

// Format renders n with the value's prefix, suffix, precision and grouping.
func (v Value) Format(n decimal.Decimal) string {
	digits := n.StringFixed(v.Places)
	if v.Grouped {
		digits = groupThousands(digits)
	}
	return v.Prefix + digits + v.Suffix
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := sign + b.String()
	if hasFrac {
		out += "." + frac
	}
	return out
}

// Easing maps linear progress in [0,1] onto eased progress in [0,1].
type Easing func(t float64) float64

func Linear(t float64) float64 { return t }

func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// Animation counts a display value up from zero over Duration.
type Animation struct {
	Duration      time.Duration
	FrameInterval time.Duration
	Ease          Easing
}

func DefaultAnimation() Animation {
	return Animation{
		Duration:      DefaultDuration,
		FrameInterval: DefaultFrameInterval,
		Ease:          EaseOutCubic,
	}
}

func (a Animation) frameCount() int {
	duration := a.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}
	interval := a.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	n := int(duration / interval)
	if n < 1 {
		return 1
	}
	return n
}

// Frames returns the intermediate display strings for target. The last frame is always
// target itself. Unparseable targets yield a single frame holding target unchanged.
func (a Animation) Frames(target string) []string {
	value, ok := ParseDisplayValue(target)
	if !ok {
		return []string{target}
	}
	ease := a.Ease
	if ease == nil {
		ease = EaseOutCubic
	}

	n := a.frameCount()
	frames := make([]string, 0, n)
	for i := 1; i < n; i++ {
		progress := ease(float64(i) / float64(n))
		progress = math.Max(0, math.Min(1, progress))
		current := value.Number.Mul(decimal.NewFromFloat(progress)).Round(value.Places)
		frames = append(frames, value.Format(current))
	}
	return append(frames, target)
}

// Play emits each frame to render, paced by FrameInterval. It stops early when ctx is done
// and always renders the final frame unless cancelled first.
func (a Animation) Play(ctx context.Context, target string, render func(frame string)) error {
	frames := a.Frames(target)
	interval := a.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i, frame := range frames {
		render(frame)
		if i == len(frames)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
