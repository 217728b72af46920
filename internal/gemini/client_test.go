package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina/partnerdesk/internal/domain"
)

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func TestGenerateTrimsAndReturnsText(t *testing.T) {
	c := &Client{gen: &fakeGenerator{text: "  Olá Maria!  \n"}}
	out, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "Olá Maria!", out)
}

func TestGenerateEmptyResponseIsError(t *testing.T) {
	c := &Client{gen: &fakeGenerator{text: "   \n"}}
	_, err := c.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGeneratePropagatesProviderError(t *testing.T) {
	c := &Client{gen: &fakeGenerator{err: errors.New("quota exceeded")}}
	_, err := c.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestDraftOutreachPromptIncludesProfile(t *testing.T) {
	gen := &fakeGenerator{text: "Oi Maria, adoramos seu conteúdo..."}
	c := &Client{gen: gen}
	out, err := c.DraftOutreach(context.Background(), domain.ScrapedProfile{
		Handle: "@maria.fit", Name: "Maria Silva",
		Platform: domain.PlatformInstagram, Followers: 120000,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Maria Silva")
	assert.Contains(t, gen.prompts[0], "@maria.fit")
	assert.Contains(t, gen.prompts[0], "120000")
}
