// Package dataset defines the scraped package dataset and its storage
// backends.
//
// The dataset is a map of package name to [PackageInfo], serialized as a
// single JSON object so existing artifacts keep working across runs. Two
// backends are provided: a JSON file (default) and MongoDB for hosted
// deployments.
package dataset

import (
	"time"
)

// TimeLayout is the serialization format for dataset timestamps.
// Timestamps in this format sort chronologically when compared as strings,
// which the scrape planner relies on.
const TimeLayout = "2006-01-02 15:04:05"

// Epoch is the timestamp assumed for packages that were never scraped.
const Epoch = "1970-01-01 00:00:00"

// FormatTime renders t as a dataset timestamp in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a dataset timestamp. The zone is always UTC.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.UTC)
}

// PackageInfo holds the scraped statistics for a single package.
//
// JSON field names match the dataset artifact produced by earlier versions
// of the scraper, so existing files remain readable. A record either carries
// install statistics or a FailReason, never both.
type PackageInfo struct {
	Name          string `json:"name" bson:"name"`
	FirstSeen     string `json:"first_seen,omitempty" bson:"first_seen,omitempty"`
	TotalInstalls int    `json:"total_installs,omitempty" bson:"total_installs,omitempty"`
	WinInstalls   int    `json:"win_installs,omitempty" bson:"win_installs,omitempty"`
	MacInstalls   int    `json:"mac_installs,omitempty" bson:"mac_installs,omitempty"`
	LinuxInstalls int    `json:"linux_installs,omitempty" bson:"linux_installs,omitempty"`
	LastScraped   string `json:"last_scraped" bson:"last_scraped"`
	FailReason    string `json:"fail_reason,omitempty" bson:"fail_reason,omitempty"`
}

// Failed reports whether this record describes a failed scrape.
func (p PackageInfo) Failed() bool { return p.FailReason != "" }

// Dataset maps package names to their scraped statistics.
type Dataset map[string]PackageInfo

// LastScraped returns the last-scraped timestamp for name,
// or [Epoch] when the package has never been scraped.
func (d Dataset) LastScraped(name string) string {
	if info, ok := d[name]; ok && info.LastScraped != "" {
		return info.LastScraped
	}
	return Epoch
}

// Merge overwrites per-package entries with results from a scrape run.
// Entries not present in results are left untouched.
func (d Dataset) Merge(results []PackageInfo) {
	for _, r := range results {
		d[r.Name] = r
	}
}
