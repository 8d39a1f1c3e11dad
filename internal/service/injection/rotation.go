package injection

import "time"

const msPerDay = 86_400_000

// DayIndex returns the number of whole UTC days since the Unix epoch at the
// given instant. All senders share this bucket, which is what makes rotation
// deterministic across concurrent relay instances.
func DayIndex(now time.Time) int64 {
	return now.UnixMilli() / msPerDay
}

// SelectBannerID picks the banner for the current calendar day from an
// ordered list. Returns "" for an empty list. Timezone-agnostic: two
// timestamps in the same UTC day always select the same entry, and the
// selection advances by one position at each day boundary.
func SelectBannerID(bannerIDs []string, now time.Time) string {
	n := len(bannerIDs)
	if n == 0 {
		return ""
	}
	return bannerIDs[DayIndex(now)%int64(n)]
}
