// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/poiesic/expertfind/ai"
	"github.com/poiesic/expertfind/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// CriteriaExtractor implements ai.CriteriaExtractor using OpenAI-compatible chat APIs.
type CriteriaExtractor struct {
	client      llms.Model
	temperature float64
	maxAttempts int
	limiter     *rate.Limiter // nil when unlimited
	logger      *slog.Logger
}

// criteriaPayload is the wire shape the model is asked to produce.
type criteriaPayload struct {
	Expertise         []string `json:"expertise"`
	YearsOfExperience *flexInt `json:"years_of_experience"`
	Organization      []string `json:"organization"`
	FieldOfInterest   []string `json:"field_of_interest"`
	Requirements      []string `json:"requirements"`
}

// flexInt accepts 12, 12.0, "12" and null.
type flexInt struct {
	value *int
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		f.value = nil
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
		if s == "" {
			f.value = nil
			return nil
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n != math.Trunc(n) {
		return fmt.Errorf("years_of_experience: not a whole number: %s", string(data))
	}
	v := int(n)
	f.value = &v
	return nil
}

// newCriteriaExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCriteriaExtractor(config *ai.Config) (*CriteriaExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ClassifierHost),
		openai.WithToken(config.ClassifierToken),
		openai.WithModel(config.ClassifierModel),
	)
	if err != nil {
		return nil, err
	}

	return newCriteriaExtractorWithClient(client, config), nil
}

func newCriteriaExtractorWithClient(client llms.Model, config *ai.Config) *CriteriaExtractor {
	x := &CriteriaExtractor{
		client:      client,
		temperature: config.Temperature,
		maxAttempts: max(config.MaxParseAttempts, 1),
		logger:      slog.Default().With("component", "openai-extractor"),
	}
	if config.RequestsPerSecond > 0 {
		x.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return x
}

// NewCriteriaExtractor creates a new criteria extractor using the provided configuration.
//
// Returns ai.CriteriaExtractor interface to enforce abstraction.
func NewCriteriaExtractor(config *ai.Config) (ai.CriteriaExtractor, error) {
	return newCriteriaExtractor(config)
}

// ExtractCriteria extracts structured search criteria from a query using an LLM.
// Malformed responses are retried; transport errors are returned immediately.
func (e *CriteriaExtractor) ExtractCriteria(ctx context.Context, text string) (core.SearchCriteria, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(strings.TrimSpace(text)),
			},
		},
	}

	var lastErr error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return core.SearchCriteria{}, fmt.Errorf("%w: %w", core.ErrExtractionFailure, err)
			}
		}

		response, err := e.client.GenerateContent(ctx, content,
			llms.WithTemperature(e.temperature), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return core.SearchCriteria{}, fmt.Errorf("%w: %w", core.ErrExtractionFailure, err)
		}

		if response == nil || len(response.Choices) < 1 {
			lastErr = errors.New("no choices returned from model")
			e.logger.Warn("empty classifier response", "attempt", attempt+1)
			continue
		}

		criteria, err := parseCriteria(response.Choices[0].Content)
		if err != nil {
			lastErr = err
			e.logger.Warn("error parsing classifier response",
				"attempt", attempt+1,
				"response", response.Choices[0].Content,
				"err", err)
			continue
		}

		e.logger.Debug("extracted criteria", "criteria", criteria)
		return criteria, nil
	}

	e.logger.Error("failed to parse classifier response after retries", "err", lastErr)
	return core.SearchCriteria{}, fmt.Errorf("%w: %w", core.ErrExtractionFailure, lastErr)
}

// parseCriteria decodes model output into SearchCriteria.
// Unknown keys and wrongly typed fields are rejected.
func parseCriteria(raw string) (core.SearchCriteria, error) {
	cleaned := cleanResponse(raw)

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()

	var payload criteriaPayload
	if err := dec.Decode(&payload); err != nil {
		return core.SearchCriteria{}, err
	}

	criteria := core.SearchCriteria{
		Expertise:       compact(payload.Expertise),
		Organization:    compact(payload.Organization),
		FieldOfInterest: compact(payload.FieldOfInterest),
		Requirements:    compact(payload.Requirements),
	}
	if payload.YearsOfExperience != nil && payload.YearsOfExperience.value != nil {
		if *payload.YearsOfExperience.value < 0 {
			return core.SearchCriteria{}, fmt.Errorf("years_of_experience cannot be negative: %d", *payload.YearsOfExperience.value)
		}
		criteria.YearsOfExperience = payload.YearsOfExperience.value
	}
	return criteria, nil
}

// compact trims values and drops blanks.
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
