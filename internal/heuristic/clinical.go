package heuristic

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kolekta/extract-cli/internal/model"
)

// Canonical field ids of the clinical reporting vocabulary. The extractor
// emits a value only when the id is present in the request schema.
const (
	fieldPatientName       = "patientName"
	fieldPatientAge        = "patientAge"
	fieldPatientGender     = "patientGender"
	fieldSymptomsDate      = "symptomsDate"
	fieldReportedSymptoms  = "reportedSymptoms"
	fieldTestResult        = "testResult"
	fieldTreatmentProvided = "treatmentProvided"
	fieldHealthWorkerID    = "healthWorkerId"
	fieldLocation          = "location"
	fieldFollowUpRequired  = "followUpRequired"
	fieldNotes             = "notes"
)

// symptomVocab is the closed vocabulary used to filter noisy symptom
// lists down to known terms.
var symptomVocab = []string{
	"fever", "headache", "chills", "cough", "nausea", "vomiting", "diarrhea",
	"fatigue", "body pain", "muscle pain", "sore throat", "loss of appetite",
	"sweats", "weakness", "dizziness",
}

// clinicalRule binds label synonyms to a canonical field id. Rules are
// ordered: more specific labels come before generic ones so that
// "symptoms date" never lands on the symptom list.
type clinicalRule struct {
	fieldID  string
	synonyms []string
}

var clinicalRules = []clinicalRule{
	{fieldSymptomsDate, []string{"symptoms date", "date of symptoms", "onset date", "date"}},
	{fieldReportedSymptoms, []string{"reported symptoms", "symptoms"}},
	{fieldTestResult, []string{"test result", "result"}},
	{fieldTreatmentProvided, []string{"treatment provided", "treatment", "therapy", "medication"}},
	{fieldHealthWorkerID, []string{"health worker id", "hw id", "staff id", "worker id"}},
	{fieldFollowUpRequired, []string{"follow up", "follow-up", "followup"}},
	{fieldPatientGender, []string{"gender", "sex"}},
	{fieldPatientAge, []string{"age"}},
	{fieldPatientName, []string{"patient name", "name"}},
	{fieldLocation, []string{"location"}},
	{fieldNotes, []string{"notes", "remarks", "comments", "observation"}},
}

var (
	agePattern      = regexp.MustCompile(`\b(\d{1,3})\b`)
	workerIDPattern = regexp.MustCompile(`[^A-Za-z0-9\-_]`)
	nameFallback    = regexp.MustCompile(`(?i)\bName\s*:\s*([A-Za-z][A-Za-z.'-]+\s+[A-Za-z][A-Za-z.'-]+)`)
	ageFallback     = regexp.MustCompile(`(?i)\bAge\s*:\s*(\d{1,3})\b`)
	genderFallback  = regexp.MustCompile(`(?i)\b(Gender|Sex)\s*:\s*(Male|Female|M|F)\b`)
)

// ExtractClinical runs the fixed-vocabulary extraction pass: a line scan
// driven by label synonyms with field-specific post-processing, then
// whole-text regex fallbacks for fields the line scan missed. Only ids
// declared in the schema are emitted.
func ExtractClinical(text string, s model.FormSchema) model.Fields {
	out := make(model.Fields)
	wants := func(id string) bool { return s.ByID(id) != nil }
	has := func(id string) bool {
		v, ok := out[id]
		return ok && !model.IsEmptyValue(v)
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := NormalizeLine(rawLine)
		if line == "" {
			continue
		}
		key, value := line, ""
		if i := strings.Index(line, ":"); i >= 0 {
			key = strings.TrimSpace(line[:i])
			value = strings.TrimSpace(line[i+1:])
		}
		k := strings.ToLower(key)

		rule, ok := matchRule(k)
		if !ok || !wants(rule.fieldID) || has(rule.fieldID) {
			continue
		}

		switch rule.fieldID {
		case fieldPatientName:
			if value != "" {
				out[fieldPatientName] = value
			}
		case fieldPatientAge:
			src := value
			if src == "" {
				src = k
			}
			if m := agePattern.FindStringSubmatch(src); m != nil {
				n, _ := strconv.Atoi(m[1])
				out[fieldPatientAge] = float64(n)
			}
		case fieldPatientGender:
			if g, ok := normalizeGender(value, k); ok {
				out[fieldPatientGender] = g
			}
		case fieldSymptomsDate:
			src := value
			if src == "" {
				src = k
			}
			if iso, ok := ParseDate(src); ok {
				out[fieldSymptomsDate] = iso
			}
		case fieldReportedSymptoms:
			if vals := SplitSymptoms(value); len(vals) > 0 {
				out[fieldReportedSymptoms] = vals
			}
		case fieldTestResult:
			src := value
			if src == "" {
				src = k
			}
			out[fieldTestResult] = NormalizeTestResult(src)
		case fieldTreatmentProvided:
			if value != "" {
				out[fieldTreatmentProvided] = value
			}
		case fieldHealthWorkerID:
			if v := workerIDPattern.ReplaceAllString(value, ""); v != "" {
				out[fieldHealthWorkerID] = v
			}
		case fieldLocation:
			if value != "" {
				out[fieldLocation] = value
			}
		case fieldFollowUpRequired:
			src := value
			if src == "" {
				src = k
			}
			if b, ok := ParseBool(src); ok {
				out[fieldFollowUpRequired] = b
			}
		case fieldNotes:
			if value != "" {
				out[fieldNotes] = value
			}
		}
	}

	// Whole-text fallbacks tolerate free-flowing prose where the strict
	// line scan found nothing.
	if wants(fieldPatientName) && !has(fieldPatientName) {
		if m := nameFallback.FindStringSubmatch(text); m != nil {
			out[fieldPatientName] = strings.TrimSpace(m[1])
		}
	}
	if wants(fieldPatientAge) && !has(fieldPatientAge) {
		if m := ageFallback.FindStringSubmatch(text); m != nil {
			n, _ := strconv.Atoi(m[1])
			out[fieldPatientAge] = float64(n)
		}
	}
	if wants(fieldPatientGender) && !has(fieldPatientGender) {
		if m := genderFallback.FindStringSubmatch(text); m != nil {
			if g, ok := normalizeGender(m[2], ""); ok {
				out[fieldPatientGender] = g
			}
		}
	}
	if wants(fieldSymptomsDate) && !has(fieldSymptomsDate) {
		if iso, ok := ParseDate(text); ok {
			out[fieldSymptomsDate] = iso
		}
	}
	if wants(fieldReportedSymptoms) && !has(fieldReportedSymptoms) {
		if vals := SplitSymptoms(text); len(vals) > 0 {
			out[fieldReportedSymptoms] = vals
		}
	}

	return out
}

func matchRule(key string) (clinicalRule, bool) {
	for _, rule := range clinicalRules {
		for _, syn := range rule.synonyms {
			if strings.Contains(key, syn) {
				return rule, true
			}
		}
	}
	return clinicalRule{}, false
}

func normalizeGender(value, key string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		v = key
	}
	switch {
	case strings.Contains(v, "female"), v == "f":
		return "Female", true
	case strings.Contains(v, "male"), v == "m":
		return "Male", true
	}
	return "", false
}

// NormalizeTestResult maps free-form result text onto the closed
// Positive/Negative/Inconclusive set, passing unmatched values through.
func NormalizeTestResult(raw string) string {
	v := strings.ToLower(raw)
	switch {
	case strings.Contains(v, "positive"):
		return "Positive"
	case strings.Contains(v, "negative"):
		return "Negative"
	case strings.Contains(v, "inconclusive"):
		return "Inconclusive"
	}
	return strings.TrimSpace(raw)
}

// SplitSymptoms splits on commas and semicolons and keeps only terms from
// the known symptom vocabulary, matching vocab words embedded in longer
// phrases.
func SplitSymptoms(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		for _, vocab := range symptomVocab {
			if strings.Contains(part, vocab) && !seen[vocab] {
				seen[vocab] = true
				out = append(out, vocab)
			}
		}
	}
	return out
}
