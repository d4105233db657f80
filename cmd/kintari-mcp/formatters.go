package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/kintari/internal/models"
	"github.com/ternarybob/kintari/internal/services/stats"
)

// formatAnswer formats a chat answer as markdown with its provenance
func formatAnswer(answer *models.Answer) string {
	var sb strings.Builder
	sb.WriteString(answer.Response)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("**Intent:** %s\n", answer.Intent))
	sb.WriteString(fmt.Sprintf("**Source:** %s\n", answer.Source))
	if answer.Partial {
		sb.WriteString("**Partial:** the language model was unavailable, only database facts are included\n")
	}
	return sb.String()
}

// formatStats formats member statistics as markdown sections
func formatStats(s *models.MemberStats) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Statistik Pengurus (%d)\n\n", s.Total))

	section := func(title string, groups map[string]int) {
		sb.WriteString(fmt.Sprintf("## %s\n", title))
		for _, item := range stats.Ranked(groups) {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", item.Label, item.Count))
		}
		sb.WriteString("\n")
	}

	section("Jabatan", s.ByRole)
	section("Bidang Usaha", s.ByIndustry)
	section("Status KTA", s.ByCardStatus)
	section("Jenis Kelamin", s.ByGender)

	sb.WriteString(fmt.Sprintf("**Total karyawan:** %d (dilaporkan oleh %d pengurus)\n", s.EmployeeTotal, s.EmployeeReported))
	return sb.String()
}

// formatSearchResults formats search results as markdown
func formatSearchResults(query string, docs []*models.DocumentRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Search Results for \"%s\" (%d results)\n\n", query, len(docs)))

	if len(docs) == 0 {
		sb.WriteString("No results found.\n")
		return sb.String()
	}

	for i, doc := range docs {
		sb.WriteString(fmt.Sprintf("### %d. %s\n", i+1, doc.Filename))
		sb.WriteString(fmt.Sprintf("**ID:** %s\n", doc.ID))
		sb.WriteString(fmt.Sprintf("**Type:** %s\n", doc.DocumentType.Info().Name))
		sb.WriteString(fmt.Sprintf("**Uploaded:** %s\n\n", doc.UploadedAt.Format(time.RFC3339)))
		if doc.Summary != "" {
			sb.WriteString(doc.Summary)
			sb.WriteString("\n")
		}
		sb.WriteString("\n---\n\n")
	}

	return sb.String()
}

// formatDocument formats a single document as markdown
func formatDocument(doc *models.DocumentRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", doc.Filename))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", doc.ID))
	sb.WriteString(fmt.Sprintf("**Type:** %s (%s)\n", doc.DocumentType.Info().Name, doc.DocumentType))
	if doc.Category != "" {
		sb.WriteString(fmt.Sprintf("**Category:** %s\n", doc.Category))
	}
	if len(doc.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("**Tags:** %s\n", strings.Join(doc.Tags, ", ")))
	}
	sb.WriteString(fmt.Sprintf("**Pages:** %d\n", doc.PageCount))
	sb.WriteString(fmt.Sprintf("**Uploaded:** %s\n", doc.UploadedAt.Format(time.RFC3339)))
	if !doc.Processed {
		sb.WriteString(fmt.Sprintf("**Processing failed:** %s\n", doc.FailureReason))
	}

	if len(doc.Keywords) > 0 {
		terms := make([]string, 0, len(doc.Keywords))
		for _, kw := range doc.Keywords {
			terms = append(terms, kw.Term)
		}
		sb.WriteString(fmt.Sprintf("**Keywords:** %s\n", strings.Join(terms, ", ")))
	}

	sb.WriteString("\n## Content\n\n")
	sb.WriteString(doc.FullText)
	sb.WriteString("\n")
	return sb.String()
}
