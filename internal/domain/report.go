package domain

import (
	"bytes"
	"encoding/json"
)

// MarshalCanonical encodes v as indented JSON without HTML escaping.
// encoding/json sorts map keys, so equal values always produce equal bytes.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// JSON returns the canonical serialisation of the report.
func (r *AnalysisReport) JSON() ([]byte, error) {
	return MarshalCanonical(r)
}

// Meta summarises the report for comparison output.
func (r *AnalysisReport) Meta() ReportMeta {
	return ReportMeta{
		Title:  r.Title,
		Date:   r.GeneratedAt,
		Mode:   r.Mode,
		Kind:   r.Kind,
		Source: r.Source,
	}
}

// ParseReport decodes a canonical report.
func ParseReport(data []byte) (*AnalysisReport, error) {
	var r AnalysisReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, CorruptInput("decode analysis report", err)
	}
	return &r, nil
}

func (r *ComparisonReport) JSON() ([]byte, error) {
	return MarshalCanonical(r)
}

func (r *DrawingReport) JSON() ([]byte, error) {
	return MarshalCanonical(r)
}
