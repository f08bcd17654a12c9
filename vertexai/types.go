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

// GenerateContentResponse is the response from a generate content request.
//
// All response types in this package are immutable once constructed. They are fully
// populated at deserialization time: optional sequences are always non-nil, and enum
// values unknown to this version of the SDK resolve to the corresponding Unknown
// variant instead of failing.
type GenerateContentResponse struct {
	Candidates     []*Candidate
	PromptFeedback *PromptFeedback
	UsageMetadata  *UsageMetadata
}

// Text returns the concatenated text parts of the first candidate, or an empty string
// when the response contains no text.
func (r *GenerateContentResponse) Text() string {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, p := range r.Candidates[0].Content.Parts {
		text += p.Text
	}
	return text
}

// Candidate is a single response candidate generated by the model.
type Candidate struct {
	Index            int
	Content          *Content
	SafetyRatings    []*SafetyRating
	CitationMetadata *CitationMetadata
	FinishReason     FinishReason

	// FinishReasonRaw is the finish reason string exactly as reported by the
	// backend. It is set even when FinishReason is FinishReasonUnknown, so that
	// values introduced by newer backends remain observable.
	FinishReasonRaw string
}

// Content is a unit of model input or output, composed of one or more parts.
type Content struct {
	Role  string
	Parts []*Part
}

// Part is a single piece of content, such as a run of text or a binary blob.
type Part struct {
	Text       string
	InlineData *Blob
}

// TextPart creates a Part containing the given text.
func TextPart(text string) *Part {
	return &Part{Text: text}
}

// Blob is binary content, such as an inline image, with its MIME type.
type Blob struct {
	MIMEType string
	Data     []byte
}

// SafetyRating is the safety assessment of a piece of content in one harm category.
type SafetyRating struct {
	Category         HarmCategory
	Probability      HarmProbability
	ProbabilityScore float32
	Blocked          bool
	Severity         HarmSeverity
	SeverityScore    float32
}

// CitationMetadata is the collection of source attributions for a candidate.
type CitationMetadata struct {
	Citations []*Citation
}

// Citation is a single source attribution for a span of generated content.
//
// StartIndex and EndIndex identify the attributed span. PublicationDate is always a
// complete date; subfields the backend leaves unspecified are substituted with the
// minimal valid values (see Date).
type Citation struct {
	Title           string
	StartIndex      int
	EndIndex        int
	URI             string
	License         string
	PublicationDate *Date
}

// Date is a calendar date with a zero-based month.
//
// Dates produced by this package always satisfy Year >= 1, Month in [0, 11] and
// Day >= 1. Subfields the backend reports as zero or omits entirely are substituted
// with the earliest valid value (year 1, January, day 1). A substituted value is
// indistinguishable from a backend-supplied one.
type Date struct {
	Year  int
	Month int
	Day   int
}

// PromptFeedback is the feedback on the prompt sent in the request.
type PromptFeedback struct {
	BlockReason        BlockReason
	BlockReasonMessage string
	SafetyRatings      []*SafetyRating
}

// UsageMetadata is the token accounting for a generate content request.
type UsageMetadata struct {
	PromptTokenCount     int32
	CandidatesTokenCount int32
	TotalTokenCount      int32
}

// FinishReason is the reason the model stopped generating tokens.
//
// FinishReason is an open enumeration: values the backend may introduce in the future
// resolve to FinishReasonUnknown rather than failing deserialization.
type FinishReason int

const (
	// FinishReasonUnspecified means no finish reason was provided.
	FinishReasonUnspecified FinishReason = iota
	// FinishReasonStop means the model reached a natural stop point or a stop sequence.
	FinishReasonStop
	// FinishReasonMaxTokens means the configured token limit was reached.
	FinishReasonMaxTokens
	// FinishReasonSafety means the candidate was flagged for safety reasons.
	FinishReasonSafety
	// FinishReasonRecitation means the candidate was flagged for recitation.
	FinishReasonRecitation
	// FinishReasonOther means generation stopped for an unlisted reason.
	FinishReasonOther
	// FinishReasonUnknown means the backend reported a value this version of the
	// SDK does not recognize.
	FinishReasonUnknown
)

var finishReasonWireNames = map[string]FinishReason{
	"FINISH_REASON_UNSPECIFIED": FinishReasonUnspecified,
	"STOP":                      FinishReasonStop,
	"MAX_TOKENS":                FinishReasonMaxTokens,
	"SAFETY":                    FinishReasonSafety,
	"RECITATION":                FinishReasonRecitation,
	"OTHER":                     FinishReasonOther,
}

var finishReasonNames = map[FinishReason]string{
	FinishReasonUnspecified: "FINISH_REASON_UNSPECIFIED",
	FinishReasonStop:        "STOP",
	FinishReasonMaxTokens:   "MAX_TOKENS",
	FinishReasonSafety:      "SAFETY",
	FinishReasonRecitation:  "RECITATION",
	FinishReasonOther:       "OTHER",
	FinishReasonUnknown:     "UNKNOWN",
}

func (fr FinishReason) String() string {
	if name, ok := finishReasonNames[fr]; ok {
		return name
	}
	return "UNKNOWN"
}

// HarmCategory is the category of a safety rating.
type HarmCategory int

const (
	// HarmCategoryUnspecified means no category was provided.
	HarmCategoryUnspecified HarmCategory = iota
	// HarmCategoryHarassment covers content that is rude, disrespectful or profane.
	HarmCategoryHarassment
	// HarmCategoryHateSpeech covers negative or harmful comments targeting identity
	// or protected attributes.
	HarmCategoryHateSpeech
	// HarmCategorySexuallyExplicit covers references to sexual acts or otherwise
	// lewd content.
	HarmCategorySexuallyExplicit
	// HarmCategoryDangerousContent covers content that promotes or enables harmful
	// acts.
	HarmCategoryDangerousContent
	// HarmCategoryCivicIntegrity covers content that may be used to deceive in
	// civic processes.
	HarmCategoryCivicIntegrity
	// HarmCategoryUnknown means the backend reported a category this version of the
	// SDK does not recognize.
	HarmCategoryUnknown
)

var harmCategoryWireNames = map[string]HarmCategory{
	"HARM_CATEGORY_UNSPECIFIED":       HarmCategoryUnspecified,
	"HARM_CATEGORY_HARASSMENT":        HarmCategoryHarassment,
	"HARM_CATEGORY_HATE_SPEECH":       HarmCategoryHateSpeech,
	"HARM_CATEGORY_SEXUALLY_EXPLICIT": HarmCategorySexuallyExplicit,
	"HARM_CATEGORY_DANGEROUS_CONTENT": HarmCategoryDangerousContent,
	"HARM_CATEGORY_CIVIC_INTEGRITY":   HarmCategoryCivicIntegrity,
}

// HarmProbability is the likelihood that a piece of content falls into a harm
// category.
type HarmProbability int

const (
	// HarmProbabilityUnspecified means no probability was provided.
	HarmProbabilityUnspecified HarmProbability = iota
	// HarmProbabilityNegligible means the content has a negligible chance of being
	// unsafe.
	HarmProbabilityNegligible
	// HarmProbabilityLow means the content has a low chance of being unsafe.
	HarmProbabilityLow
	// HarmProbabilityMedium means the content has a medium chance of being unsafe.
	HarmProbabilityMedium
	// HarmProbabilityHigh means the content has a high chance of being unsafe.
	HarmProbabilityHigh
	// HarmProbabilityUnknown means the backend reported a probability this version
	// of the SDK does not recognize.
	HarmProbabilityUnknown
)

var harmProbabilityWireNames = map[string]HarmProbability{
	"HARM_PROBABILITY_UNSPECIFIED": HarmProbabilityUnspecified,
	"NEGLIGIBLE":                   HarmProbabilityNegligible,
	"LOW":                          HarmProbabilityLow,
	"MEDIUM":                       HarmProbabilityMedium,
	"HIGH":                         HarmProbabilityHigh,
}

// HarmSeverity is the magnitude of how harmful a piece of content might be.
type HarmSeverity int

const (
	// HarmSeverityUnspecified means no severity was provided.
	HarmSeverityUnspecified HarmSeverity = iota
	// HarmSeverityNegligible means the severity of the content is negligible.
	HarmSeverityNegligible
	// HarmSeverityLow means the severity of the content is low.
	HarmSeverityLow
	// HarmSeverityMedium means the severity of the content is medium.
	HarmSeverityMedium
	// HarmSeverityHigh means the severity of the content is high.
	HarmSeverityHigh
	// HarmSeverityUnknown means the backend reported a severity this version of the
	// SDK does not recognize.
	HarmSeverityUnknown
)

var harmSeverityWireNames = map[string]HarmSeverity{
	"HARM_SEVERITY_UNSPECIFIED": HarmSeverityUnspecified,
	"HARM_SEVERITY_NEGLIGIBLE":  HarmSeverityNegligible,
	"HARM_SEVERITY_LOW":         HarmSeverityLow,
	"HARM_SEVERITY_MEDIUM":      HarmSeverityMedium,
	"HARM_SEVERITY_HIGH":        HarmSeverityHigh,
}

// BlockReason is the reason a prompt was blocked.
type BlockReason int

const (
	// BlockReasonUnspecified means no block reason was provided.
	BlockReasonUnspecified BlockReason = iota
	// BlockReasonSafety means the prompt was blocked for safety reasons.
	BlockReasonSafety
	// BlockReasonOther means the prompt was blocked for an unlisted reason.
	BlockReasonOther
	// BlockReasonBlocklist means the prompt matched a configured blocklist.
	BlockReasonBlocklist
	// BlockReasonProhibitedContent means the prompt contained prohibited content.
	BlockReasonProhibitedContent
	// BlockReasonUnknown means the backend reported a reason this version of the
	// SDK does not recognize.
	BlockReasonUnknown
)

var blockReasonWireNames = map[string]BlockReason{
	"BLOCKED_REASON_UNSPECIFIED": BlockReasonUnspecified,
	"SAFETY":                     BlockReasonSafety,
	"OTHER":                      BlockReasonOther,
	"BLOCKLIST":                  BlockReasonBlocklist,
	"PROHIBITED_CONTENT":         BlockReasonProhibitedContent,
}
