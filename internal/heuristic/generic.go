package heuristic

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kolekta/extract-cli/internal/model"
)

// Match scores for alias comparison. A candidate key is bound to a field
// only when its best alias score reaches acceptThreshold.
const (
	scoreExact      = 100
	scoreSubstring  = 80
	scoreJaccardMax = 60

	acceptThreshold = 40
)

var (
	numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	lineOrnaments = "•·-—–*☒☐✓✔✗[]() \t\r\n"
)

// ExtractGeneric scans line-oriented "key: value" and "key = value"
// patterns and binds each candidate key to the best-matching schema field
// by fuzzy alias scoring. Matched values are coerced per field type. The
// pass never fails; unmatched fields are simply absent from the result.
func ExtractGeneric(text string, s model.FormSchema) model.Fields {
	aliases := make(map[string][]string, len(s.Fields))
	for _, f := range s.Fields {
		aliases[f.ID] = deriveAliases(f.ID)
	}

	out := make(model.Fields)
	for _, line := range strings.Split(text, "\n") {
		line = NormalizeLine(line)
		if line == "" {
			continue
		}
		key, value := splitKeyValue(line)
		if key == "" || value == "" {
			continue
		}

		fieldID, score := bestField(key, s, aliases)
		if score < acceptThreshold {
			continue
		}
		if existing, ok := out[fieldID]; ok && !model.IsEmptyValue(existing) {
			continue
		}

		spec := s.ByID(fieldID)
		if coerced, ok := CoerceValue(value, *spec); ok {
			out[fieldID] = coerced
		}
	}
	return out
}

// NormalizeLine applies NFKC folding and strips bullet and checkbox
// ornaments that OCR output commonly carries.
func NormalizeLine(s string) string {
	s = norm.NFKC.String(s)
	return strings.Trim(s, lineOrnaments)
}

func splitKeyValue(line string) (key, value string) {
	sep := strings.IndexAny(line, ":=")
	if sep < 0 {
		return "", ""
	}
	return strings.TrimSpace(line[:sep]), strings.TrimSpace(line[sep+1:])
}

// bestField scores the candidate key against every field's alias set in
// schema order. The first field to reach the running maximum keeps it;
// later ties do not overwrite.
func bestField(key string, s model.FormSchema, aliases map[string][]string) (string, int) {
	keyLower := strings.ToLower(key)
	keyTokens := tokenize(keyLower)

	bestID := ""
	bestScore := 0
	for _, f := range s.Fields {
		score := scoreAliases(keyLower, keyTokens, aliases[f.ID])
		if score > bestScore {
			bestScore = score
			bestID = f.ID
		}
	}
	return bestID, bestScore
}

func scoreAliases(key string, keyTokens []string, aliasSet []string) int {
	best := 0
	for _, alias := range aliasSet {
		var score int
		switch {
		case key == alias:
			score = scoreExact
		case strings.Contains(key, alias) || strings.Contains(alias, key):
			score = scoreSubstring
		default:
			score = int(scoreJaccardMax * jaccard(keyTokens, tokenize(alias)))
		}
		if score > best {
			best = score
		}
	}
	return best
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	inter := 0
	union := len(set)
	seen := make(map[string]bool, len(b))
	for _, t := range b {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

// deriveAliases builds the normalized string variants of a field id used
// for fuzzy matching: the spaced token join, the plain join, the raw id,
// plus domain contractions for date-bearing ids.
func deriveAliases(id string) []string {
	tokens := splitIdent(id)
	spaced := strings.Join(tokens, " ")
	plain := strings.Join(tokens, "")

	seen := make(map[string]bool, 4)
	var out []string
	add := func(a string) {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" && !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}

	add(spaced)
	add(plain)
	add(id)

	hasDate := false
	hasBirth := false
	for _, t := range tokens {
		if t == "date" {
			hasDate = true
		}
		if t == "birth" {
			hasBirth = true
		}
	}
	if hasDate && len(tokens) > 1 && tokens[len(tokens)-1] == "date" {
		add(strings.Join(tokens[:len(tokens)-1], " "))
	}
	if hasDate && hasBirth {
		add("dob")
	}

	return out
}

// splitIdent splits a camelCase or snake_case identifier into lowercase
// tokens.
func splitIdent(id string) []string {
	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}
	for _, r := range id {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case r >= 'A' && r <= 'Z':
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// CoerceValue converts a raw matched string into the dynamic type implied
// by the field spec. The second return is false when no usable value
// could be derived.
func CoerceValue(raw string, spec model.FieldSpec) (any, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	switch spec.Type {
	case model.TypeNumber:
		m := numberPattern.FindString(raw)
		if m == "" {
			return nil, false
		}
		n, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return nil, false
		}
		return n, true

	case model.TypeBoolean:
		b, ok := ParseBool(raw)
		if !ok {
			return nil, false
		}
		return b, true

	case model.TypeDate:
		iso, ok := ParseDate(raw)
		if !ok {
			return nil, false
		}
		return iso, true

	case model.TypeMultiselect:
		return coerceMultiselect(raw, spec.Options)

	case model.TypeSelect:
		return matchOption(raw, spec.Options), true

	default:
		return raw, true
	}
}

// ParseBool maps the fixed yes/no vocabulary to a boolean,
// case-insensitively.
func ParseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "t", "1":
		return true, true
	case "no", "n", "false", "f", "0":
		return false, true
	}
	return false, false
}

func coerceMultiselect(raw string, options []string) (any, bool) {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ','
	})
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, matchOption(p, options))
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// matchOption resolves a token against declared options: exact match
// first, then substring containment, else the raw token passes through.
func matchOption(token string, options []string) string {
	lower := strings.ToLower(token)
	for _, opt := range options {
		if strings.ToLower(opt) == lower {
			return opt
		}
	}
	for _, opt := range options {
		optLower := strings.ToLower(opt)
		if strings.Contains(optLower, lower) || strings.Contains(lower, optLower) {
			return opt
		}
	}
	return token
}
