package service

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"creator-growth/internal/domain"
)

// ProviderReply es el resultado de parsear la respuesta de un proveedor:
// StructuredReply si se encontró un objeto JSON, UnstructuredReply si no.
type ProviderReply interface {
	isProviderReply()
}

// StructuredReply guarda los campos del objeto JSON con las claves normalizadas
// (minúsculas, sin "_" ni "-").
type StructuredReply struct {
	Fields map[string]json.RawMessage
}

// UnstructuredReply conserva el texto crudo cuando no había JSON decodificable.
type UnstructuredReply struct {
	Text string
}

func (StructuredReply) isProviderReply()   {}
func (UnstructuredReply) isProviderReply() {}

var (
	fenceStart = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEnd   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// ParseProviderReply limpia fences y busca el primer objeto {...} decodificable.
func ParseProviderReply(raw string) ProviderReply {
	cleaned := cleanLLMJSONResponse(raw)
	for _, candidate := range []string{extractFirstJSONObject(cleaned), cleaned, extractFirstJSONObject(raw)} {
		if candidate == "" {
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(candidate), &obj); err != nil || len(obj) == 0 {
			continue
		}
		fields := make(map[string]json.RawMessage, len(obj))
		for k, v := range obj {
			fields[normalizeFieldKey(k)] = v
		}
		return StructuredReply{Fields: fields}
	}
	return UnstructuredReply{Text: strings.TrimSpace(cleaned)}
}

// cleanLLMJSONResponse quita fences ```json ... ``` y BOM, dejando el contenido usable.
func cleanLLMJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "\uFEFF")
	s = fenceStart.ReplaceAllString(s, "")
	s = fenceEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractFirstJSONObject devuelve el primer objeto balanceado, respetando strings y escapes.
func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

func normalizeFieldKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.ReplaceAll(k, "_", "")
	return strings.ReplaceAll(k, "-", "")
}

// field devuelve el primer campo presente entre las claves dadas.
func (r StructuredReply) field(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := r.Fields[normalizeFieldKey(k)]; ok && len(v) > 0 && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

// stringList acepta un string, una lista de strings o una lista de objetos con texto.
func (r StructuredReply) stringList(keys ...string) []string {
	raw, ok := r.field(keys...)
	if !ok {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if s := strings.TrimSpace(single); s != "" {
			return []string{s}
		}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := textOf(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func textOf(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	sr := StructuredReply{Fields: make(map[string]json.RawMessage, len(obj))}
	for k, v := range obj {
		sr.Fields[normalizeFieldKey(k)] = v
	}
	for _, k := range []string{"trend", "insight", "title", "name", "description", "text"} {
		if v, ok := sr.field(k); ok {
			var s string
			if err := json.Unmarshal(v, &s); err == nil && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

type rawCompetitor struct {
	Name                 string          `json:"name"`
	Followers            json.RawMessage `json:"followers"`
	AvgEngagement        json.RawMessage `json:"avgEngagement"`
	EngagementRate       json.RawMessage `json:"engagementRate"`
	MonetizationStrategy string          `json:"monetizationStrategy"`
	Strategy             string          `json:"strategy"`
}

func (r StructuredReply) competitors() []domain.Competitor {
	raw, ok := r.field("topCompetitors", "competitors")
	if !ok {
		nested, ok := r.field("competitorAnalysis")
		if !ok {
			return nil
		}
		inner := ParseProviderReply(string(nested))
		sr, ok := inner.(StructuredReply)
		if !ok {
			return nil
		}
		return sr.competitors()
	}
	var items []rawCompetitor
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]domain.Competitor, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		eng := it.AvgEngagement
		if len(eng) == 0 {
			eng = it.EngagementRate
		}
		strategy := strings.TrimSpace(it.MonetizationStrategy)
		if strategy == "" {
			strategy = strings.TrimSpace(it.Strategy)
		}
		out = append(out, domain.Competitor{
			Name:                 name,
			Followers:            int64(flexibleNumber(it.Followers)),
			AvgEngagement:        normalizeRate(flexibleNumber(eng)),
			MonetizationStrategy: strategy,
		})
	}
	return out
}

type rawOpportunity struct {
	Type              string          `json:"type"`
	Name              string          `json:"name"`
	EstimatedEarnings json.RawMessage `json:"estimatedEarnings"`
	Requirements      json.RawMessage `json:"requirements"`
}

func (r StructuredReply) opportunities() []domain.MonetizationOpportunity {
	raw, ok := r.field("monetizationOpportunities", "opportunities")
	if !ok {
		return nil
	}
	var items []rawOpportunity
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]domain.MonetizationOpportunity, 0, len(items))
	for _, it := range items {
		typ := strings.TrimSpace(it.Type)
		if typ == "" {
			typ = strings.TrimSpace(it.Name)
		}
		if typ == "" {
			continue
		}
		out = append(out, domain.MonetizationOpportunity{
			Type:              typ,
			EstimatedEarnings: looseText(it.EstimatedEarnings),
			Requirements:      looseText(it.Requirements),
		})
	}
	return out
}

// looseText convierte strings, números o listas de strings en un texto.
func looseText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

// flexibleNumber acepta 1200000, "1,200,000", "1.2M", "850K" o "4.5%".
func flexibleNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	s = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, ",", "")))
	s = strings.TrimPrefix(s, "~")
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "%"):
		s = strings.TrimSuffix(s, "%")
		mult = 0.01
	case strings.HasSuffix(s, "K"):
		s = strings.TrimSuffix(s, "K")
		mult = 1e3
	case strings.HasSuffix(s, "M"):
		s = strings.TrimSuffix(s, "M")
		mult = 1e6
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
		mult = 1e9
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v * mult
}

// normalizeRate lleva a fracción valores que vienen como porcentaje (4.5 -> 0.045).
func normalizeRate(v float64) float64 {
	if v > 1 {
		v /= 100
	}
	if v < 0 || v > 1 {
		return 0
	}
	return v
}
