package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// AllocateID derives the next free process id for the given day.
// The scheme is bv_<YYYY_MM_DD>_<sequence>, zero-padded to three
// digits. The sequence is one greater than the highest existing
// sequence for the same day prefix; other days never reset it below
// zero because only matching prefixes count. Past 999 the padding
// simply grows.
func AllocateID(now time.Time, existingIDs []string) string {
	prefix := fmt.Sprintf("bv_%s_", now.Format("2006_01_02"))
	re := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `(\d{3,})$`)

	highest := 0
	for _, id := range existingIDs {
		m := re.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}

	return fmt.Sprintf("%s%03d", prefix, highest+1)
}
