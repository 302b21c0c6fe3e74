package assist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCompleter replays canned responses in order; a nil entry yields an
// error.
type scriptedCompleter struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (c *scriptedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	i := c.calls
	c.calls++
	c.prompts = append(c.prompts, prompt)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return "", errors.New("script exhausted")
}

func TestGenerativeNilCompleterFallsBack(t *testing.T) {
	g := NewGenerative(nil, NewLexical())
	f, explanation := g.Extract(context.Background(), "i want cake under 400", nil)

	assert.Equal(t, NewLexical().Parse("i want cake under 400"), f)
	assert.Equal(t, genericExplanation, explanation)
}

func TestGenerativeErrorFallbackIsIdempotent(t *testing.T) {
	c := &scriptedCompleter{errs: []error{errors.New("down"), errors.New("down")}}
	g := NewGenerative(c, NewLexical())

	f1, e1 := g.Extract(context.Background(), "pastry under 250", nil)
	f2, e2 := g.Extract(context.Background(), "pastry under 250", nil)

	assert.Equal(t, f1, f2)
	assert.Equal(t, e1, e2)
	assert.Equal(t, genericExplanation, e1)
	require.NotNil(t, f1.MaxPrice)
	assert.Equal(t, 250.0, *f1.MaxPrice)
}

func TestGenerativeParsesFencedResponse(t *testing.T) {
	c := &scriptedCompleter{responses: []string{
		"```json\n{\"category\":\"Pastry\",\"name_contains\":[\"Croissant\"],\"min_price\":\"100\",\"max_price\":300,\"min_rating\":null,\"max_rating\":null,\"explanation\":\"Buttery picks under 300.\"}\n```",
	}}
	g := NewGenerative(c, NewLexical())

	f, explanation := g.Extract(context.Background(), "buttery croissant under 300", nil)

	assert.Equal(t, CategoryPastry, f.Category)
	assert.Equal(t, []string{"croissant"}, f.NameTokens)
	require.NotNil(t, f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, 100.0, *f.MinPrice)
	assert.Equal(t, 300.0, *f.MaxPrice)
	assert.Nil(t, f.MinRating)
	assert.Equal(t, "Buttery picks under 300.", explanation)
	assert.Equal(t, DefaultLimit, f.Limit)
}

func TestGenerativeToleratesSurroundingProse(t *testing.T) {
	c := &scriptedCompleter{responses: []string{
		`Sure, here you go: {"category":"cake","min_rating":4,"explanation":"Top rated cakes."} hope that helps!`,
	}}
	g := NewGenerative(c, NewLexical())

	f, explanation := g.Extract(context.Background(), "best cakes", nil)

	assert.Equal(t, CategoryCake, f.Category)
	require.NotNil(t, f.MinRating)
	assert.Equal(t, 4.0, *f.MinRating)
	assert.Equal(t, "Top rated cakes.", explanation)
}

func TestGenerativeRejectsBadValues(t *testing.T) {
	c := &scriptedCompleter{responses: []string{
		`{"category":"bread","min_price":-5,"min_rating":7,"max_rating":"high"}`,
	}}
	g := NewGenerative(c, NewLexical())

	f, explanation := g.Extract(context.Background(), "any bread?", nil)

	assert.Empty(t, f.Category)
	assert.Nil(t, f.MinPrice)
	assert.Nil(t, f.MinRating)
	assert.Nil(t, f.MaxRating)
	assert.Equal(t, genericExplanation, explanation)
}

func TestGenerativeMalformedJSONFallsBack(t *testing.T) {
	c := &scriptedCompleter{responses: []string{"no json here at all"}}
	g := NewGenerative(c, NewLexical())

	f, explanation := g.Extract(context.Background(), "cake under 400", nil)

	assert.Equal(t, NewLexical().Parse("cake under 400"), f)
	assert.Equal(t, genericExplanation, explanation)
}

func TestGenerativePromptEmbedsCatalog(t *testing.T) {
	c := &scriptedCompleter{responses: []string{`{"category":"cake"}`}}
	g := NewGenerative(c, NewLexical())

	g.Extract(context.Background(), "cake", []Product{{ID: 7, Name: "Red Velvet", Category: "cake", Price: 550, AverageRating: 4.5}})

	require.Len(t, c.prompts, 1)
	assert.Contains(t, c.prompts[0], "Red Velvet")
	assert.Contains(t, c.prompts[0], "550")
}

func TestRecommend(t *testing.T) {
	products := []Product{{Name: "Red Velvet"}, {Name: "Black Forest"}}

	t.Run("happy path", func(t *testing.T) {
		c := &scriptedCompleter{responses: []string{"Try the Red Velvet, it is our most loved cake."}}
		g := NewGenerative(c, NewLexical())
		out, err := g.Recommend(context.Background(), "something sweet", products)
		require.NoError(t, err)
		assert.Equal(t, "Try the Red Velvet, it is our most loved cake.", out)
	})

	t.Run("service error surfaces", func(t *testing.T) {
		c := &scriptedCompleter{errs: []error{errors.New("timeout")}}
		g := NewGenerative(c, NewLexical())
		_, err := g.Recommend(context.Background(), "something sweet", products)
		assert.Error(t, err)
	})

	t.Run("nothing to recommend", func(t *testing.T) {
		g := NewGenerative(&scriptedCompleter{}, NewLexical())
		_, err := g.Recommend(context.Background(), "something sweet", nil)
		assert.Error(t, err)
	})
}

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"a":1}`, `{"a":1}`, true},
		{`prose {"a":{"b":2}} trailing`, `{"a":{"b":2}}`, true},
		{`{"s":"has } brace"}`, `{"s":"has } brace"}`, true},
		{`{"s":"escaped \" quote }"}`, `{"s":"escaped \" quote }"}`, true},
		{`no braces`, "", false},
		{`{"unterminated":`, "", false},
	}
	for _, tc := range tests {
		got, ok := firstJSONObject(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}

func TestExtractionPromptRequestsStrictJSON(t *testing.T) {
	p := extractionPrompt("cake", nil)
	assert.True(t, strings.Contains(p, "ONE JSON object"))
	assert.Contains(t, p, `"cake"`)
}
