package common

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// TitleLabel turns a table name like "international" into "International".
func TitleLabel(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// TableCacheKey is the cache key of a table snapshot.
func TableCacheKey(prefix, table string) string {
	return prefix + table
}
