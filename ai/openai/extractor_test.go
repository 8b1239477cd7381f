package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/expertfind/ai"
	"github.com/poiesic/expertfind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// scriptedModel replays canned completions in order.
type scriptedModel struct {
	responses []string
	err       error
	calls     int
	messages  []llms.MessageContent
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	m.messages = messages
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &llms.ContentResponse{}, nil
	}
	idx := min(m.calls-1, len(m.responses)-1)
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.responses[idx]}},
	}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("not used")
}

func newTestExtractor(model llms.Model, opts ...ai.ConfigOption) *CriteriaExtractor {
	return newCriteriaExtractorWithClient(model, ai.NewConfig(opts...))
}

func TestExtractCriteria_ValidResponse(t *testing.T) {
	model := &scriptedModel{responses: []string{
		`{"expertise":["Cloud Computing"],"years_of_experience":5,"organization":[],"field_of_interest":[],"requirements":[]}`,
	}}
	x := newTestExtractor(model)

	criteria, err := x.ExtractCriteria(context.Background(), "Find experts in Cloud Computing more than 5 years of experience")
	require.NoError(t, err)

	assert.Equal(t, []string{"Cloud Computing"}, criteria.Expertise)
	require.NotNil(t, criteria.YearsOfExperience)
	assert.Equal(t, 5, *criteria.YearsOfExperience)
	assert.Empty(t, criteria.Organization)
	assert.Equal(t, 1, model.calls)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
}

func TestExtractCriteria_FencedAndChatty(t *testing.T) {
	model := &scriptedModel{responses: []string{
		"Here you go:\n```json\n{\"organization\": [\"Google\"], \"years_of_experience\": null,}\n```",
	}}
	x := newTestExtractor(model)

	criteria, err := x.ExtractCriteria(context.Background(), "Find experts who worked at Google")
	require.NoError(t, err)
	assert.Equal(t, []string{"Google"}, criteria.Organization)
	assert.Nil(t, criteria.YearsOfExperience)
}

func TestExtractCriteria_RetriesMalformedOutput(t *testing.T) {
	model := &scriptedModel{responses: []string{
		`not json at all`,
		`{"organization":["AppGenius Inc."],"years_of_experience":"12"}`,
	}}
	x := newTestExtractor(model)

	criteria, err := x.ExtractCriteria(context.Background(), "AppGenius 12 years")
	require.NoError(t, err)
	assert.Equal(t, 2, model.calls)
	assert.Equal(t, []string{"AppGenius Inc."}, criteria.Organization)
	assert.Equal(t, 12, criteria.MinYears())
}

func TestExtractCriteria_MalformedOutputFails(t *testing.T) {
	model := &scriptedModel{responses: []string{`I cannot help with that.`}}
	x := newTestExtractor(model, ai.WithMaxParseAttempts(3))

	criteria, err := x.ExtractCriteria(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExtractionFailure)
	assert.True(t, criteria.IsEmpty())
	assert.Equal(t, 3, model.calls)
}

func TestExtractCriteria_MalformedOutputFailsOpen(t *testing.T) {
	model := &scriptedModel{responses: []string{`{"expertise": "Cloud"`}}
	x := newTestExtractor(model, ai.WithMaxParseAttempts(1))

	got := ai.ExtractOrEmpty(context.Background(), x, "cloud", 0, nil)
	assert.False(t, got.Parsed())
	assert.True(t, got.Criteria.IsEmpty())
	assert.ErrorIs(t, got.Cause, core.ErrExtractionFailure)
}

func TestExtractCriteria_ModelUnavailable(t *testing.T) {
	model := &scriptedModel{err: errors.New("connection refused")}
	x := newTestExtractor(model)

	_, err := x.ExtractCriteria(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExtractionFailure)
	assert.Equal(t, 1, model.calls, "transport errors are not retried")
}

func TestExtractCriteria_NoChoices(t *testing.T) {
	model := &scriptedModel{}
	x := newTestExtractor(model, ai.WithMaxParseAttempts(2))

	_, err := x.ExtractCriteria(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExtractionFailure)
	assert.Equal(t, 2, model.calls)
}

func TestExtractCriteria_RateLimiterHonorsContext(t *testing.T) {
	model := &scriptedModel{responses: []string{`{}`}}
	x := newTestExtractor(model, ai.WithRequestsPerSecond(0.001))
	require.NotNil(t, x.limiter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := x.ExtractCriteria(ctx, "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExtractionFailure)
	assert.Zero(t, model.calls)
}

func TestParseCriteria(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    core.SearchCriteria
		years   int
		wantErr bool
	}{
		{
			name: "empty object",
			raw:  `{}`,
			want: core.SearchCriteria{Expertise: []string{}, Organization: []string{}, FieldOfInterest: []string{}, Requirements: []string{}},
		},
		{
			name:  "float years",
			raw:   `{"years_of_experience": 7.0}`,
			years: 7,
		},
		{
			name: "blank values dropped",
			raw:  `{"expertise": ["  Go ", ""], "requirements": null}`,
			want: core.SearchCriteria{Expertise: []string{"Go"}, Organization: []string{}, FieldOfInterest: []string{}, Requirements: []string{}},
		},
		{
			name: "missing key quote repaired",
			raw:  `{"expertise": ["Go"], organization": ["Google"]}`,
			want: core.SearchCriteria{Expertise: []string{"Go"}, Organization: []string{"Google"}, FieldOfInterest: []string{}, Requirements: []string{}},
		},
		{name: "unknown key", raw: `{"salary": 10}`, wantErr: true},
		{name: "list given as string", raw: `{"expertise": "Go"}`, wantErr: true},
		{name: "fractional years", raw: `{"years_of_experience": 2.5}`, wantErr: true},
		{name: "word years", raw: `{"years_of_experience": "many"}`, wantErr: true},
		{name: "negative years", raw: `{"years_of_experience": -3}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCriteria(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.years > 0 {
				assert.Equal(t, tt.years, got.MinYears())
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
