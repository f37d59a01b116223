package prescription

import (
	"encoding/json"

	"github.com/jwalitptl/prescription-api/internal/model"
	apperrors "github.com/jwalitptl/prescription-api/pkg/errors"
)

// extractJSON locates the first balanced JSON object embedded in free-form
// model output. The scanner tracks string and escape state while counting
// braces, so a "}" inside a quoted instruction never truncates the match.
func extractJSON(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if start == -1 {
			if ch == '{' {
				start = i
				depth = 1
			}
			continue
		}

		if escaped {
			escaped = false
			continue
		}

		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}

	return "", false
}

// parseRecord turns raw model output into a PrescriptionRecord. The only hard
// contract is the container shape: the decoded value must be an object whose
// "medicines" key holds an array. Entry fields are passed through verbatim;
// the fallback sentinel is whatever string the model produced.
func parseRecord(raw string) (*model.PrescriptionRecord, error) {
	candidate, ok := extractJSON(raw)
	if !ok {
		return nil, apperrors.NewParse("no valid JSON found in response", nil)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &decoded); err != nil {
		return nil, apperrors.NewParse("failed to parse prescription analysis results", err)
	}

	rawMedicines, present := decoded["medicines"]
	if !present {
		return nil, apperrors.NewSchemaViolation("invalid prescription analysis format", nil)
	}
	entries, isArray := rawMedicines.([]interface{})
	if !isArray {
		return nil, apperrors.NewSchemaViolation("invalid prescription analysis format", nil)
	}

	record := &model.PrescriptionRecord{
		Medicines:   make([]model.MedicineEntry, 0, len(entries)),
		DoctorName:  stringField(decoded, "doctorName"),
		PatientName: stringField(decoded, "patientName"),
		Date:        stringField(decoded, "date"),
	}

	for _, entry := range entries {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			record.Medicines = append(record.Medicines, model.MedicineEntry{})
			continue
		}
		record.Medicines = append(record.Medicines, model.MedicineEntry{
			Name:         stringField(fields, "name"),
			Dosage:       stringField(fields, "dosage"),
			Frequency:    stringField(fields, "frequency"),
			Duration:     stringField(fields, "duration"),
			Instructions: stringField(fields, "instructions"),
		})
	}

	return record, nil
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
