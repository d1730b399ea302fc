// Package insight turns aggregated metric entries into a bounded,
// structurally validated natural-language insight. A run moves through
// Idle → PromptBuilt → ProviderInvoked → {Validated | FallbackApplied};
// there are no retries, a provider failure or malformed response goes
// straight to the fallback.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yourname/healthsync/internal"
)

// Disposition names the terminal outcome of one pipeline run.
type Disposition string

const (
	// DispositionNoData: empty input short-circuited to the canonical
	// no-data insight without contacting the provider.
	DispositionNoData Disposition = "no_data"
	// DispositionGenerated: provider answered and the response validated.
	DispositionGenerated Disposition = "generated"
	// DispositionFallback: provider failed or broke the contract; the
	// neutral fallback was substituted.
	DispositionFallback Disposition = "fallback"
)

type Pipeline struct {
	provider TextProvider
	logger   internal.Logger
}

func NewPipeline(provider TextProvider, logger internal.Logger) *Pipeline {
	return &Pipeline{provider: provider, logger: logger}
}

// Generate runs the full pipeline. It never returns an error: provider
// failures are absorbed and masked by the fallback insight, so the HTTP
// boundary always has a usable payload.
func (p *Pipeline) Generate(ctx context.Context, metrics []internal.Metric) (Insight, Disposition) {
	if len(metrics) == 0 {
		return NoDataInsight(), DispositionNoData
	}

	prompt := BuildPrompt(metrics)

	raw, err := p.provider.GenerateText(ctx, prompt)
	if err != nil {
		p.logger.Warnf("insight provider invocation failed, applying fallback: %v", err)
		return FallbackInsight(), DispositionFallback
	}

	ins, err := ParseAndValidate(raw)
	if err != nil {
		p.logger.Warnf("insight response rejected, applying fallback: %v", err)
		return FallbackInsight(), DispositionFallback
	}
	return ins, DispositionGenerated
}

// BuildPrompt deterministically renders the instruction sent to the
// provider: the computed per-kind statistics verbatim, followed by the
// response contract mandating a single JSON object with exactly the five
// insight fields and no surrounding prose.
func BuildPrompt(metrics []internal.Metric) string {
	var sleep, heartRate, weight []internal.Metric
	for _, m := range metrics {
		switch m.Kind {
		case internal.KindSleep:
			sleep = append(sleep, m)
		case internal.KindHeartRate:
			heartRate = append(heartRate, m)
		case internal.KindWeight:
			weight = append(weight, m)
		}
	}

	var b strings.Builder
	b.WriteString("You are a health assistant analyzing wearable telemetry for one person.\n\n")
	b.WriteString(analyzeSleep(sleep))
	b.WriteString("\n")
	b.WriteString(analyzeWeight(weight))
	b.WriteString("\n")
	b.WriteString(analyzeHeartRate(heartRate))
	b.WriteString("\n")
	b.WriteString(`Respond with a single JSON object containing exactly these fields:
"summary" (string), "status" (one of "good", "fair", "poor"), "highlights" (non-empty array of strings), "recommendations" (non-empty array of strings), "next_steps" (string).
Do not include any text before or after the JSON object.
`)
	return b.String()
}

func analyzeSleep(sleep []internal.Metric) string {
	if len(sleep) == 0 {
		return "Sleep: no data available.\n"
	}
	var minutesSum, qualitySum float64
	qualityN := 0
	for _, m := range sleep {
		minutesSum += m.Value
		if m.Quality != nil {
			qualitySum += float64(*m.Quality)
			qualityN++
		}
	}
	out := fmt.Sprintf("Sleep:\n- Average sleep duration: %.1f hours\n", minutesSum/float64(len(sleep))/60)
	if qualityN > 0 {
		out += fmt.Sprintf("- Average sleep quality: %.1f/100\n", qualitySum/float64(qualityN))
	}
	return out
}

func analyzeWeight(weight []internal.Metric) string {
	if len(weight) == 0 {
		return "Weight: no data available.\n"
	}
	first, latest := weight[0], weight[0]
	var sum float64
	for _, m := range weight {
		sum += m.Value
		if m.Timestamp.Before(first.Timestamp) {
			first = m
		}
		if m.Timestamp.After(latest.Timestamp) {
			latest = m
		}
	}
	return fmt.Sprintf("Weight:\n- Average weight: %.1f kg\n- First recorded: %.1f kg, latest: %.1f kg, change: %+.1f kg\n",
		sum/float64(len(weight)), first.Value, latest.Value, latest.Value-first.Value)
}

func analyzeHeartRate(heartRate []internal.Metric) string {
	if len(heartRate) == 0 {
		return "Heart rate: no data available.\n"
	}
	var sum, restingSum float64
	restingN := 0
	for _, m := range heartRate {
		sum += m.Value
		if m.RestingRate != nil {
			restingSum += float64(*m.RestingRate)
			restingN++
		}
	}
	out := fmt.Sprintf("Heart rate:\n- Average heart rate: %.1f bpm\n", sum/float64(len(heartRate)))
	if restingN > 0 {
		out += fmt.Sprintf("- Average resting rate: %.1f bpm\n", restingSum/float64(restingN))
	}
	return out
}

var requiredFields = []string{"summary", "status", "highlights", "recommendations", "next_steps"}

// ParseAndValidate enforces the response contract. A parse failure or a
// missing required field discards the entire response; a bad status value
// is coerced to fair and empty lists are replaced with generic ones.
func ParseAndValidate(raw string) (Insight, error) {
	text := stripFences(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return Insight{}, &internal.ProviderFailure{Stage: "parse", Err: err}
	}
	for _, k := range requiredFields {
		if _, ok := fields[k]; !ok {
			return Insight{}, &internal.ProviderFailure{Stage: "contract", Err: fmt.Errorf("missing field %q", k)}
		}
	}

	var ins Insight
	if err := json.Unmarshal([]byte(text), &ins); err != nil {
		return Insight{}, &internal.ProviderFailure{Stage: "parse", Err: err}
	}

	switch ins.Status {
	case StatusGood, StatusFair, StatusPoor:
	default:
		ins.Status = StatusFair
	}
	if len(ins.Highlights) == 0 {
		ins.Highlights = append([]string(nil), genericHighlights...)
	}
	if len(ins.Recommendations) == 0 {
		ins.Recommendations = append([]string(nil), genericRecommendations...)
	}
	return ins, nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, which some providers wrap around their JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{}") {
		s = s[i+1:] // drop the language tag line
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
