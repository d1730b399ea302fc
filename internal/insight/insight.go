package insight

// Status is the closed assessment scale the provider must answer on.
type Status string

const (
	StatusGood Status = "good"
	StatusFair Status = "fair"
	StatusPoor Status = "poor"
)

// Insight is the five-field structured output consumed by the presentation
// layer. Highlights and Recommendations are never empty.
type Insight struct {
	Summary         string   `json:"summary"`
	Status          Status   `json:"status"`
	Highlights      []string `json:"highlights"`
	Recommendations []string `json:"recommendations"`
	NextSteps       string   `json:"next_steps"`
}

var genericHighlights = []string{
	"Your health data is being tracked.",
	"Regular syncing keeps your metrics up to date.",
}

var genericRecommendations = []string{
	"Keep logging sleep, heart rate and weight consistently.",
	"Review your daily summary to spot changes early.",
}

// NoDataInsight is returned when the pipeline is asked to analyze an empty
// metric window; the provider is never contacted.
func NoDataInsight() Insight {
	return Insight{
		Summary:         "No health data recorded for this period yet.",
		Status:          StatusFair,
		Highlights:      []string{"Nothing has been synced for this window."},
		Recommendations: []string{"Sync your wearable to start collecting metrics.", "Log sleep, heart rate and weight daily for useful insights."},
		NextSteps:       "Connect a data source and check back once a few days of data have accumulated.",
	}
}

// FallbackInsight replaces a provider response that failed or violated the
// contract. It is deliberately neutral: it states that the analysis is
// unavailable rather than fabricating a favorable reading.
func FallbackInsight() Insight {
	return Insight{
		Summary:         "Automated analysis is temporarily unavailable. Your recorded metrics are stored and will be analyzed once the service recovers.",
		Status:          StatusFair,
		Highlights:      append([]string(nil), genericHighlights...),
		Recommendations: append([]string(nil), genericRecommendations...),
		NextSteps:       "Try requesting insights again later.",
	}
}
