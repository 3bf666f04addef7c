package checkpoint

import (
	"database/sql"
	"encoding/json"
	"time"

	"paperflow/internal/paper"
)

const runColumns = "run_key, source_url, source_kind, title, authors_json, year, abstract, pdf_url, triage_summary, triage_contributions_json, triage_limitations_json, triage_relevance, triage_action, triage_tags_json, collection_item_id, detail_doc_id, human_decision, human_tags_json, human_comment, deep_overview, deep_innovations_json, deep_directions_json, status, error_message, created_at, updated_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*paper.Run, error) {
	var (
		key           string
		sourceURL     string
		sourceKind    string
		title         sql.NullString
		authors       sql.NullString
		year          sql.NullInt64
		abstract      sql.NullString
		pdfURL        sql.NullString
		summary       sql.NullString
		contributions sql.NullString
		limitations   sql.NullString
		relevance     sql.NullInt64
		action        sql.NullString
		triageTags    sql.NullString
		collectionID  sql.NullString
		detailDocID   sql.NullString
		decision      sql.NullString
		humanTags     sql.NullString
		comment       sql.NullString
		overview      sql.NullString
		innovations   sql.NullString
		directions    sql.NullString
		statusStr     string
		errorMessage  sql.NullString
		createdRaw    string
		updatedRaw    string
	)

	if err := scanner.Scan(
		&key,
		&sourceURL,
		&sourceKind,
		&title,
		&authors,
		&year,
		&abstract,
		&pdfURL,
		&summary,
		&contributions,
		&limitations,
		&relevance,
		&action,
		&triageTags,
		&collectionID,
		&detailDocID,
		&decision,
		&humanTags,
		&comment,
		&overview,
		&innovations,
		&directions,
		&statusStr,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	run := &paper.Run{
		Key:                 key,
		SourceURL:           sourceURL,
		SourceKind:          paper.SourceKind(sourceKind),
		Title:               title.String,
		Authors:             decodeList(authors.String),
		Year:                int(year.Int64),
		Abstract:            abstract.String,
		PDFURL:              pdfURL.String,
		TriageSummary:       summary.String,
		TriageContributions: decodeList(contributions.String),
		TriageLimitations:   decodeList(limitations.String),
		TriageRelevance:     int(relevance.Int64),
		TriageAction:        action.String,
		TriageTags:          decodeList(triageTags.String),
		CollectionItemID:    collectionID.String,
		DetailDocID:         detailDocID.String,
		HumanDecision:       decision.String,
		HumanTags:           decodeList(humanTags.String),
		HumanComment:        comment.String,
		DeepReadOverview:    overview.String,
		DeepReadInnovations: decodeList(innovations.String),
		DeepReadDirections:  decodeList(directions.String),
		Status:              paper.Status(statusStr),
		ErrorMessage:        errorMessage.String,
	}

	if created, err := parseTimeString(createdRaw); err == nil {
		run.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		run.UpdatedAt = updated
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func encodeList(values []string) any {
	if len(values) == 0 {
		return nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return string(data)
}

func decodeList(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}

func parseTimeString(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
