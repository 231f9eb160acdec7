package storage

import (
	"strings"
	"time"

	"github.com/hyperjump/docstudio/internal/models"
)

// ComputeStats aggregates recs. Today counts records whose date falls on now's calendar day.
func ComputeStats(recs []*models.SummaryRecord, now time.Time) models.Stats {
	st := models.Stats{
		TotalDocuments: len(recs),
		ModelUsage:     map[string]int{},
		FileTypes:      map[string]int{},
	}
	if len(recs) == 0 {
		return st
	}
	today := now.Format("2006-01-02")
	summaryWords := 0
	for _, r := range recs {
		st.TotalWords += r.OriginalWordCount
		summaryWords += r.SummaryWordCount
		if r.ModelUsed != "" {
			st.ModelUsage[r.ModelUsed]++
		}
		if r.FileType != "" {
			st.FileTypes[strings.ToLower(r.FileType)]++
		}
		if strings.HasPrefix(r.Date, today) {
			st.Today++
		}
	}
	st.AverageSummaryWords = float64(summaryWords) / float64(len(recs))
	return st
}
