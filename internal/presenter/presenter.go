// Package presenter turns an analysis result into display values: the summary
// cards and the sentiment distribution chart.
package presenter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

// ChartLabels in display order.
var ChartLabels = [3]string{"Positive", "Neutral", "Negative"}

// ChartColors match ChartLabels.
var ChartColors = [3]string{"#4CAF50", "#FFC107", "#F44336"}

type Chart struct {
	Labels [3]string `json:"labels"`
	Data   [3]int    `json:"data"`
	Colors [3]string `json:"colors"`
}

// View is what the front end renders for one result.
type View struct {
	Sentiment  string   `json:"sentiment"`
	Class      string   `json:"class"`
	Confidence string   `json:"confidence"`
	Time       string   `json:"time"`
	Positive   string   `json:"positive"`
	Negative   string   `json:"negative"`
	Neutral    string   `json:"neutral"`
	Topics     []string `json:"topics"`
	Consensus  string   `json:"consensus,omitempty"`
	Validators int      `json:"validators,omitempty"`
	HateSpeech bool     `json:"hate_speech,omitempty"`
	Error      string   `json:"error,omitempty"`
	Chart      Chart    `json:"chart"`
}

// Present builds the view. It has no side effects, so presenting the same
// result twice gives equal views.
func Present(r sentiment.Result, elapsed time.Duration) View {
	v := View{
		Sentiment:  "N/A",
		Confidence: fmt.Sprintf("%.1f%%", r.Confidence),
		Time:       fmt.Sprintf("%.0fms", float64(elapsed)/float64(time.Millisecond)),
		Positive:   fmt.Sprintf("%.1f%%", r.PositivePercentage),
		Negative:   fmt.Sprintf("%.1f%%", r.NegativePercentage),
		Neutral:    fmt.Sprintf("%.1f%%", r.NeutralPercentage),
		Topics:     append([]string{}, r.KeyTopics...),
		Error:      r.Error,
		Chart:      chart(r),
	}
	if r.Sentiment != "" {
		v.Sentiment = string(r.Sentiment)
		v.Class = r.Sentiment.Class()
	}
	if r.Sentiment == sentiment.Error {
		v.Confidence = "N/A%"
	}
	if r.ConsensusLevel != nil {
		v.Consensus = fmt.Sprintf("%.1f%%", *r.ConsensusLevel)
	}
	if r.ValidatorCount != nil {
		v.Validators = *r.ValidatorCount
	}
	if r.HateSpeech != nil {
		v.HateSpeech = *r.HateSpeech
	}
	return v
}

// chart counts per-sentence labels when details exist, else marks the overall label.
func chart(r sentiment.Result) Chart {
	c := Chart{Labels: ChartLabels, Colors: ChartColors}
	if len(r.Details) > 0 {
		for _, d := range r.Details {
			if i := slot(sentiment.ParseLabel(d.Sentiment)); i >= 0 && strings.TrimSpace(d.Sentiment) != "" {
				c.Data[i]++
			}
		}
		return c
	}
	if i := slot(r.Sentiment); i >= 0 {
		c.Data[i] = 1
	}
	return c
}

func slot(l sentiment.Label) int {
	switch l {
	case sentiment.Positive:
		return 0
	case sentiment.Neutral:
		return 1
	case sentiment.Negative:
		return 2
	}
	return -1
}

// Render writes the view as plain text, for the CLI.
func Render(w io.Writer, v View) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Sentiment:  %s\n", v.Sentiment)
	fmt.Fprintf(&b, "Confidence: %s\n", v.Confidence)
	fmt.Fprintf(&b, "Time:       %s\n", v.Time)
	fmt.Fprintf(&b, "Breakdown:  positive %s, neutral %s, negative %s\n", v.Positive, v.Neutral, v.Negative)
	if v.Consensus != "" {
		fmt.Fprintf(&b, "Consensus:  %s of %d validators\n", v.Consensus, v.Validators)
	}
	if len(v.Topics) > 0 {
		fmt.Fprintf(&b, "Topics:     %s\n", strings.Join(v.Topics, ", "))
	}
	if v.HateSpeech {
		b.WriteString("Warning:    hate speech detected\n")
	}
	if v.Error != "" {
		fmt.Fprintf(&b, "Error:      %s\n", v.Error)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
