package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"agriprice/internal/model"
)

// DigestEntry is one commodity's line in the daily digest.
type DigestEntry struct {
	Commodity string
	Stats     *model.Stats
	LastDate  time.Time
	Change    float64 // percent change over the last observation
	RSI       float64
	Err       string
}

// FormatStats formats one commodity's statistics for a chat reply.
func FormatStats(commodity string, stats *model.Stats, lastDate time.Time, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🌾 <b>%s</b>\n\n", html.EscapeString(commodity)))
	b.WriteString(fmt.Sprintf("Current Price: ₹%.2f\n", stats.Current))
	b.WriteString(fmt.Sprintf("Average Price: ₹%.2f\n", stats.Average))
	b.WriteString(fmt.Sprintf("Highest Price: ₹%.2f\n", stats.Highest))
	b.WriteString(fmt.Sprintf("Lowest Price: ₹%.2f\n", stats.Lowest))
	if !lastDate.IsZero() {
		b.WriteString(fmt.Sprintf("\nLast observation: %s (%s)\n",
			lastDate.Format(model.DateLayout), humanize.RelTime(lastDate, now, "ago", "from now")))
	}
	return b.String()
}

// FormatDigest formats the scheduled summary across all commodities.
func FormatDigest(entries []DigestEntry, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>AgriPrice daily digest</b> | %s\n\n", now.Format(model.DateLayout)))
	for _, e := range entries {
		name := html.EscapeString(e.Commodity)
		if e.Err != "" || e.Stats == nil {
			b.WriteString(fmt.Sprintf("• %s: %s\n", name, html.EscapeString(e.Err)))
			continue
		}
		b.WriteString(fmt.Sprintf("• <b>%s</b> ₹%.2f (%+.1f%%) avg ₹%.2f, range ₹%.2f–₹%.2f, RSI %.0f\n",
			name, e.Stats.Current, e.Change, e.Stats.Average, e.Stats.Lowest, e.Stats.Highest, e.RSI))
	}
	if latest := latestDate(entries); !latest.IsZero() {
		b.WriteString(fmt.Sprintf("\nData as of %s.", humanize.RelTime(latest, now, "ago", "from now")))
	}
	return b.String()
}

// FormatSinceSnapshot describes how the current price moved since an earlier snapshot.
func FormatSinceSnapshot(prev, cur float64, takenAt, now time.Time) string {
	change := 0.0
	if prev != 0 {
		change = (cur - prev) / prev * 100
	}
	return fmt.Sprintf("Since snapshot %s: ₹%.2f → ₹%.2f (%+.1f%%)\n",
		humanize.RelTime(takenAt, now, "ago", "from now"), prev, cur, change)
}

// FormatCommodities lists the tracked commodities.
func FormatCommodities(names []string) string {
	if len(names) == 0 {
		return "No commodities available."
	}
	escaped := make([]string, len(names))
	for i, n := range names {
		escaped[i] = html.EscapeString(n)
	}
	return "Tracked commodities:\n• " + strings.Join(escaped, "\n• ")
}

// FormatHelp lists the supported chat commands.
func FormatHelp() string {
	return "Available commands:\n• /stats &lt;commodity&gt;\n• /commodities\n• /digest"
}

func latestDate(entries []DigestEntry) time.Time {
	var latest time.Time
	for _, e := range entries {
		if e.LastDate.After(latest) {
			latest = e.LastDate
		}
	}
	return latest
}
