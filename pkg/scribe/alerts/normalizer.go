package alerts

import (
	"encoding/json"
	"strings"

	"ai-scribe-be/internal/constant"
	"ai-scribe-be/internal/entity"
)

// The generation model is asked for a fixed alert shape but in practice
// returns a single object, a wrapper object or an array, with field names in
// English or Spanish. Normalization is an ordered alias lookup per canonical
// field, so adding a new synonym is a one-line change.

var wrapperFields = []string{"alerts", "alertas", "items", "data"}

var (
	typeAliases           = []string{"type", "tipo", "category", "categoria", "kind"}
	titleAliases          = []string{"title", "titulo", "name", "nombre", "alert", "alerta"}
	detailsAliases        = []string{"details", "detalles", "description", "descripcion", "detail", "message", "mensaje"}
	recommendationAliases = []string{"recommendation", "recomendacion", "action", "accion", "suggestion", "sugerencia"}
	recommendationLists   = []string{"recommendations", "recomendaciones", "actions", "acciones"}
	severityAliases       = []string{"severity", "severidad", "priority", "prioridad", "level", "nivel", "urgency", "urgencia"}
)

// Free-text severity phrases. Checked as substrings of the lowercased value:
// "prioridad muy alta" and "HIGH priority" both resolve to High.
var (
	highKeywords = []string{"high", "alta", "alto", "critic", "crític", "urgent", "grave", "severe", "severa", "max"}
	lowKeywords  = []string{"low", "baja", "bajo", "leve", "minor", "menor"}
)

// Normalize parses a raw alerts payload and coerces every record into a
// canonical ClinicalAlert. A payload that is not valid JSON yields nil: the
// note itself must still be delivered, the caller just logs the loss.
//
// Guarantees: one output alert per input record, every field non-empty,
// severity always one of the three enum values.
func Normalize(rawJSON string) []entity.ClinicalAlert {
	records := coerceRecords(rawJSON)
	if len(records) == 0 {
		return nil
	}

	result := make([]entity.ClinicalAlert, 0, len(records))
	for _, rec := range records {
		result = append(result, normalizeRecord(rec))
	}
	return result
}

// coerceRecords turns the payload into a uniform record slice. Accepts a JSON
// array, an object wrapping an array under a known field, or a single object.
func coerceRecords(rawJSON string) []map[string]interface{} {
	trimmed := strings.TrimSpace(rawJSON)
	if trimmed == "" {
		return nil
	}

	var asArray []map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &asArray); err == nil {
		return asArray
	}

	var asObject map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &asObject); err != nil {
		return nil
	}

	for _, field := range wrapperFields {
		wrapped, ok := asObject[field].([]interface{})
		if !ok {
			continue
		}
		records := make([]map[string]interface{}, 0, len(wrapped))
		for _, item := range wrapped {
			if rec, ok := item.(map[string]interface{}); ok {
				records = append(records, rec)
			}
		}
		return records
	}

	// Plain object: a single record.
	return []map[string]interface{}{asObject}
}

func normalizeRecord(rec map[string]interface{}) entity.ClinicalAlert {
	alert := entity.ClinicalAlert{
		Type:           stringField(rec, typeAliases, constant.AlertTypeFallback),
		Title:          stringField(rec, titleAliases, constant.AlertTitleFallback),
		Details:        stringField(rec, detailsAliases, constant.AlertDetailsFallback),
		Recommendation: stringField(rec, recommendationAliases, ""),
		Severity:       parseSeverity(stringField(rec, severityAliases, "")),
	}

	if alert.Recommendation == "" {
		alert.Recommendation = joinedListField(rec, recommendationLists)
	}
	if alert.Recommendation == "" {
		alert.Recommendation = constant.AlertRecommendationFallback
	}

	return alert
}

// stringField resolves a canonical field by trying aliases in priority order.
func stringField(rec map[string]interface{}, aliases []string, fallback string) string {
	for _, alias := range aliases {
		if v, ok := rec[alias]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return fallback
}

// joinedListField joins an array-valued field with ". " so multi-action
// recommendations collapse into one sentence chain.
func joinedListField(rec map[string]interface{}, aliases []string) string {
	for _, alias := range aliases {
		list, ok := rec[alias].([]interface{})
		if !ok {
			continue
		}
		var parts []string
		for _, item := range list {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ". ")
		}
	}
	return ""
}

// parseSeverity maps a free-text severity or priority phrase onto the enum.
// Unknown or absent values default to Medium: an alert the model bothered to
// emit should not be rendered as the lowest tier by accident.
func parseSeverity(raw string) entity.Severity {
	lowered := strings.ToLower(raw)
	for _, kw := range highKeywords {
		if strings.Contains(lowered, kw) {
			return entity.SeverityHigh
		}
	}
	for _, kw := range lowKeywords {
		if strings.Contains(lowered, kw) {
			return entity.SeverityLow
		}
	}
	return entity.SeverityMedium
}
