// Copyright 2025 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vertexai

import (
	"encoding/base64"
	"errors"
)

// The wire types below mirror the backend response shapes, with every field optional.
// They are converted into the public model exactly once, at deserialization time, by
// the pure functions in this file. The conversion never fails on unrecognized enum
// values; it only fails when a required field with no safe default is absent.

type wireGenerateContentResponse struct {
	Candidates     []*wireCandidate    `json:"candidates,omitempty"`
	PromptFeedback *wirePromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *wireUsageMetadata  `json:"usageMetadata,omitempty"`
}

type wireCandidate struct {
	Index            *int                  `json:"index,omitempty"`
	Content          *wireContent          `json:"content,omitempty"`
	SafetyRatings    []*wireSafetyRating   `json:"safetyRatings,omitempty"`
	CitationMetadata *wireCitationMetadata `json:"citationMetadata,omitempty"`
	FinishReason     string                `json:"finishReason,omitempty"`
}

type wireContent struct {
	Role  string      `json:"role,omitempty"`
	Parts []*wirePart `json:"parts,omitempty"`
}

type wirePart struct {
	Text       string    `json:"text,omitempty"`
	InlineData *wireBlob `json:"inlineData,omitempty"`
}

type wireBlob struct {
	MIMEType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type wireSafetyRating struct {
	Category         string   `json:"category,omitempty"`
	Probability      string   `json:"probability,omitempty"`
	ProbabilityScore *float32 `json:"probabilityScore,omitempty"`
	Blocked          *bool    `json:"blocked,omitempty"`
	Severity         string   `json:"severity,omitempty"`
	SeverityScore    *float32 `json:"severityScore,omitempty"`
}

type wireCitationMetadata struct {
	Citations []*wireCitation `json:"citations,omitempty"`
}

type wireCitation struct {
	Title           string    `json:"title,omitempty"`
	StartIndex      *int      `json:"startIndex,omitempty"`
	EndIndex        *int      `json:"endIndex,omitempty"`
	URI             string    `json:"uri,omitempty"`
	License         string    `json:"license,omitempty"`
	PublicationDate *wireDate `json:"publicationDate,omitempty"`
}

// wireDate is a google.type.Date: each subfield is an optional integer where zero
// means unspecified. Month is one-based on the wire.
type wireDate struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
	Day   int `json:"day,omitempty"`
}

type wirePromptFeedback struct {
	BlockReason        string              `json:"blockReason,omitempty"`
	BlockReasonMessage string              `json:"blockReasonMessage,omitempty"`
	SafetyRatings      []*wireSafetyRating `json:"safetyRatings,omitempty"`
}

type wireUsageMetadata struct {
	PromptTokenCount     *int32 `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount *int32 `json:"candidatesTokenCount,omitempty"`
	TotalTokenCount      *int32 `json:"totalTokenCount,omitempty"`
}

func (w *wireGenerateContentResponse) toPublic() (*GenerateContentResponse, error) {
	candidates := make([]*Candidate, 0, len(w.Candidates))
	for _, wc := range w.Candidates {
		c, err := wc.toPublic()
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	resp := &GenerateContentResponse{Candidates: candidates}
	if w.PromptFeedback != nil {
		resp.PromptFeedback = w.PromptFeedback.toPublic()
	}
	if w.UsageMetadata != nil {
		resp.UsageMetadata = &UsageMetadata{
			PromptTokenCount:     int32Value(w.UsageMetadata.PromptTokenCount),
			CandidatesTokenCount: int32Value(w.UsageMetadata.CandidatesTokenCount),
			TotalTokenCount:      int32Value(w.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func (w *wireCandidate) toPublic() (*Candidate, error) {
	ratings := make([]*SafetyRating, 0, len(w.SafetyRatings))
	for _, wr := range w.SafetyRatings {
		ratings = append(ratings, wr.toPublic())
	}

	c := &Candidate{
		Index:           intValue(w.Index),
		SafetyRatings:   ratings,
		FinishReason:    toFinishReason(w.FinishReason),
		FinishReasonRaw: w.FinishReason,
	}
	if w.Content != nil {
		c.Content = w.Content.toPublic()
	}
	if w.CitationMetadata != nil {
		cm, err := w.CitationMetadata.toPublic()
		if err != nil {
			return nil, err
		}
		c.CitationMetadata = cm
	}
	return c, nil
}

func (w *wireContent) toPublic() *Content {
	parts := make([]*Part, 0, len(w.Parts))
	for _, wp := range w.Parts {
		p := &Part{Text: wp.Text}
		if wp.InlineData != nil {
			data, err := base64.StdEncoding.DecodeString(wp.InlineData.Data)
			if err != nil {
				data = nil
			}
			p.InlineData = &Blob{MIMEType: wp.InlineData.MIMEType, Data: data}
		}
		parts = append(parts, p)
	}
	return &Content{Role: w.Role, Parts: parts}
}

func (w *wireSafetyRating) toPublic() *SafetyRating {
	return &SafetyRating{
		Category:         toHarmCategory(w.Category),
		Probability:      toHarmProbability(w.Probability),
		ProbabilityScore: float32Value(w.ProbabilityScore),
		Blocked:          boolValue(w.Blocked),
		Severity:         toHarmSeverity(w.Severity),
		SeverityScore:    float32Value(w.SeverityScore),
	}
}

func (w *wireCitationMetadata) toPublic() (*CitationMetadata, error) {
	citations := make([]*Citation, 0, len(w.Citations))
	for _, wc := range w.Citations {
		c, err := wc.toPublic()
		if err != nil {
			return nil, err
		}
		citations = append(citations, c)
	}
	return &CitationMetadata{Citations: citations}, nil
}

func (w *wireCitation) toPublic() (*Citation, error) {
	// The end index has no safe default. A citation without one is malformed, and is
	// surfaced as a conversion failure instead of being silently defaulted.
	if w.EndIndex == nil {
		return nil, errors.New("vertexai: citation is missing an end index")
	}
	c := &Citation{
		Title:      w.Title,
		StartIndex: intValue(w.StartIndex),
		EndIndex:   *w.EndIndex,
		URI:        w.URI,
		License:    w.License,
	}
	if w.PublicationDate != nil {
		c.PublicationDate = w.PublicationDate.toPublic()
	}
	return c, nil
}

// toPublic substitutes minimal valid values for unspecified date subfields: year 1,
// January (month 0, zero-based) and day 1. The substitution is lossy: a date the
// backend reported without a year is indistinguishable from an actual year-1 date.
func (w *wireDate) toPublic() *Date {
	d := &Date{Year: 1, Month: 0, Day: 1}
	if w.Year > 0 {
		d.Year = w.Year
	}
	if w.Month > 0 {
		d.Month = w.Month - 1
	}
	if w.Day > 0 {
		d.Day = w.Day
	}
	return d
}

func (w *wirePromptFeedback) toPublic() *PromptFeedback {
	ratings := make([]*SafetyRating, 0, len(w.SafetyRatings))
	for _, wr := range w.SafetyRatings {
		ratings = append(ratings, wr.toPublic())
	}
	return &PromptFeedback{
		BlockReason:        toBlockReason(w.BlockReason),
		BlockReasonMessage: w.BlockReasonMessage,
		SafetyRatings:      ratings,
	}
}

func toFinishReason(wire string) FinishReason {
	if wire == "" {
		return FinishReasonUnspecified
	}
	if fr, ok := finishReasonWireNames[wire]; ok {
		return fr
	}
	return FinishReasonUnknown
}

func toHarmCategory(wire string) HarmCategory {
	if wire == "" {
		return HarmCategoryUnspecified
	}
	if hc, ok := harmCategoryWireNames[wire]; ok {
		return hc
	}
	return HarmCategoryUnknown
}

func toHarmProbability(wire string) HarmProbability {
	if wire == "" {
		return HarmProbabilityUnspecified
	}
	if hp, ok := harmProbabilityWireNames[wire]; ok {
		return hp
	}
	return HarmProbabilityUnknown
}

func toHarmSeverity(wire string) HarmSeverity {
	if wire == "" {
		return HarmSeverityUnspecified
	}
	if hs, ok := harmSeverityWireNames[wire]; ok {
		return hs
	}
	return HarmSeverityUnknown
}

func toBlockReason(wire string) BlockReason {
	if wire == "" {
		return BlockReasonUnspecified
	}
	if br, ok := blockReasonWireNames[wire]; ok {
		return br
	}
	return BlockReasonUnknown
}

func base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func intValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func int32Value(v *int32) int32 {
	if v == nil {
		return 0
	}
	return *v
}

func float32Value(v *float32) float32 {
	if v == nil {
		return 0
	}
	return *v
}

func boolValue(v *bool) bool {
	if v == nil {
		return false
	}
	return *v
}
