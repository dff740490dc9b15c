package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/ctalab/ctaeval/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one batch run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one dataset.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure marks a dataset whose improvement is below the threshold.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError marks a dataset whose analysis did not complete.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertBatchToJUnit converts an effectiveness batch to JUnit XML. A
// dataset fails when its weighted improvement is below minWeighted; a
// failed analysis is reported as an error.
func ConvertBatchToJUnit(report models.EffectivenessBatchReport, minWeighted float64, at time.Time) *JUnitTestSuites {
	suite := JUnitTestSuite{
		Name:      "effectiveness",
		Tests:     len(report.Results),
		Timestamp: at.UTC().Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "min_weighted_improvement", Value: fmt.Sprintf("%.2f", minWeighted)},
			{Name: "average_weighted_improvement", Value: fmt.Sprintf("%.4f", report.Summary.AverageWeightedImprovement)},
			{Name: "average_logarithmic_improvement", Value: fmt.Sprintf("%.4f", report.Summary.AverageLogarithmicImprovement)},
		},
	}

	for _, o := range report.Results {
		tc := convertOutcome(o, minWeighted)
		switch {
		case tc.Error != nil:
			suite.Errors++
		case tc.Failure != nil:
			suite.Failures++
		}
		suite.Time += tc.Time
		suite.TestCases = append(suite.TestCases, tc)
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		Time:       suite.Time,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func convertOutcome(o models.Outcome[models.EffectivenessReport], minWeighted float64) JUnitTestCase {
	tc := JUnitTestCase{
		Classname: "effectiveness",
		Time:      float64(o.DurationMs) / 1000.0,
	}
	if o.Value != nil {
		tc.Name = o.Value.Metadata.DatasetLabel
	}

	if o.Failure != nil {
		tc.Error = &JUnitError{
			Message: o.Failure.Message,
			Type:    string(o.Failure.Kind),
			Body:    o.Failure.RawResponse,
		}
		if tc.Name == "" {
			tc.Name = "unnamed"
		}
		return tc
	}
	if o.Value == nil || o.Value.Metrics == nil {
		tc.Error = &JUnitError{Message: "no metrics", Type: string(models.FailureInternal)}
		return tc
	}

	c := o.Value.Metrics.Comparison
	if c.WeightedImprovementPct < minWeighted {
		tc.Failure = &JUnitFailure{
			Message: fmt.Sprintf("%s: weighted improvement %.2f%% < %.2f%%", tc.Name, c.WeightedImprovementPct, minWeighted),
			Type:    "ImprovementBelowThreshold",
			Body: fmt.Sprintf("weighted=%.2f logarithmic=%.2f gain=%.2f",
				c.WeightedImprovementPct, c.LogarithmicImprovementPct, c.EffectivenessGainPct),
		}
	}
	return tc
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(report models.EffectivenessBatchReport, minWeighted float64, path string) error {
	suites := ConvertBatchToJUnit(report, minWeighted, time.Now())

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
