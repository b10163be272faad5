// Package trigger holds the scoring and deduplication core: everything
// between an analyzed item and a persisted trigger row.
package trigger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/jonesrussell/pharma-triggers/internal/analyzer"
	"github.com/jonesrussell/pharma-triggers/internal/domain"
)

// Dedup bucket granularities.
const (
	BucketDay   = "day"
	BucketWeek  = "week"
	BucketMonth = "month"
)

// Fingerprint identifies the event an item reports, not its wording.
// Two items from different outlets covering the same announcement in the
// same time bucket produce the same fingerprint.
type Fingerprint struct {
	Key    string // human-readable composite, for debugging
	Digest string // xxhash64 of Key, hex; this is what gets persisted
}

// ComputeFingerprint derives the dedup identity from the analyzed parts of
// an item. Company name is case/whitespace folded; categories are sorted so
// match order cannot change the identity.
func ComputeFingerprint(companyName string, categories []string, source domain.SourceType, publishedAt time.Time, bucket string) Fingerprint {
	company := analyzer.NormalizeText(companyName)
	if company == "" {
		company = "unknown"
	}

	cats := make([]string, len(categories))
	copy(cats, categories)
	sortUnique(&cats)

	key := strings.Join([]string{
		company,
		strings.Join(cats, ","),
		string(source),
		bucketLabel(publishedAt, bucket),
	}, "|")

	return Fingerprint{
		Key:    key,
		Digest: fmt.Sprintf("%016x", xxhash.Sum64String(key)),
	}
}

// bucketLabel renders the time bucket an item falls into. Undated items
// share a single bucket so re-scrapes of the same undated page still
// deduplicate.
func bucketLabel(t time.Time, bucket string) string {
	if t.IsZero() {
		return "undated"
	}
	switch bucket {
	case BucketDay:
		return t.UTC().Format("2006-01-02")
	case BucketMonth:
		return t.UTC().Format("2006-01")
	default: // week
		year, week := t.UTC().ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
}

func sortUnique(ss *[]string) {
	seen := make(map[string]bool, len(*ss))
	out := (*ss)[:0]
	for _, s := range *ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	*ss = out
}
