package health

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// IndicatorName identifies a risk indicator attached to a detection result.
type IndicatorName string

// Indicators produced by the detection channels. Other names are accepted and carried verbatim.
const (
	IndicatorSocialWithdrawal      IndicatorName = "social_withdrawal"
	IndicatorFlatAffect            IndicatorName = "flat_affect"
	IndicatorReducedExpressivity   IndicatorName = "reduced_expressivity"
	IndicatorSpeechHesitation      IndicatorName = "speech_hesitation"
	IndicatorWordFindingDifficulty IndicatorName = "word_finding_difficulty"
	IndicatorSlowedSpeech          IndicatorName = "slowed_speech"
	IndicatorMemoryLapse           IndicatorName = "memory_lapse"
	IndicatorAttentionDrift        IndicatorName = "attention_drift"
	IndicatorResponseLatency       IndicatorName = "response_latency"
)

// Known reports whether n belongs to the closed set of channel indicators.
func (n IndicatorName) Known() bool {
	switch n {
	case IndicatorSocialWithdrawal, IndicatorFlatAffect, IndicatorReducedExpressivity,
		IndicatorSpeechHesitation, IndicatorWordFindingDifficulty, IndicatorSlowedSpeech,
		IndicatorMemoryLapse, IndicatorAttentionDrift, IndicatorResponseLatency:
		return true
	default:
		return false
	}
}

// RiskIndicator is a single named value. Booleans are stored as 1 or 0.
type RiskIndicator struct {
	Name  IndicatorName
	Value float64
}

// Truthy reports whether the indicator is present: finite and non-zero.
func (i RiskIndicator) Truthy() bool {
	return i.Value != 0 && !math.IsNaN(i.Value) && !math.IsInf(i.Value, 0)
}

// RiskIndicators keeps indicators in the order they were reported.
// The JSON form is an object; decoding preserves key order.
type RiskIndicators []RiskIndicator

// Get returns the value for name.
func (r RiskIndicators) Get(name IndicatorName) (float64, bool) {
	for _, ind := range r {
		if ind.Name == name {
			return ind.Value, true
		}
	}
	return 0, false
}

// Truthy reports whether name is present with a truthy value.
func (r RiskIndicators) Truthy(name IndicatorName) bool {
	for _, ind := range r {
		if ind.Name == name {
			return ind.Truthy()
		}
	}
	return false
}

// MarshalJSON writes the indicators as an ordered JSON object.
func (r RiskIndicators) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ind := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(ind.Name))
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(ind.Value)
		if err != nil {
			return nil, fmt.Errorf("risk indicator %q: %w", ind.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of number or boolean values, keeping key order.
// A repeated key keeps its first position and its last value.
func (r *RiskIndicators) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*r = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("risk indicators must be a JSON object")
	}
	out := RiskIndicators{}
	positions := make(map[IndicatorName]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name := IndicatorName(keyTok.(string))
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		value, err := indicatorValue(raw)
		if err != nil {
			return fmt.Errorf("risk indicator %q: %w", name, err)
		}
		if idx, seen := positions[name]; seen {
			out[idx].Value = value
			continue
		}
		positions[name] = len(out)
		out = append(out, RiskIndicator{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}

func indicatorValue(raw any) (float64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return strconv.ParseFloat(v.String(), 64)
	default:
		return 0, fmt.Errorf("value must be a number or boolean")
	}
}
