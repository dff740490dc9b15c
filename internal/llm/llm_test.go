package llm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory(t *testing.T) {
	c, err := New(Config{Provider: ProviderMock})
	require.NoError(t, err)
	assert.Equal(t, "mock", c.Name())

	c, err = New(Config{Provider: ProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "openai:gpt-4o-mini", c.Name())

	c, err = New(Config{Provider: ProviderGemini, APIKey: "k", Model: DefaultModel})
	require.NoError(t, err)
	assert.Equal(t, "gemini:"+DefaultGeminiModel, c.Name())

	_, err = New(Config{Provider: "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai, gemini, copilot, mock")
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider(" Gemini ")
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, p)

	_, err = ParseProvider("claude")
	require.Error(t, err)
}

func TestSettingsSnapshot(t *testing.T) {
	s := NewSettings(Config{})
	snap := s.Snapshot()
	assert.Equal(t, DefaultProvider, snap.Provider)
	assert.Equal(t, DefaultModel, snap.Model)
	assert.Equal(t, DefaultTimeout, snap.Timeout)

	s.SetAPIKey("new-key")
	s.SetModel("gpt-4o-mini")
	s.SetProvider(ProviderGemini)

	// earlier snapshots are unaffected
	assert.Empty(t, snap.APIKey)

	now := s.Snapshot()
	assert.Equal(t, "new-key", now.APIKey)
	assert.Equal(t, "gpt-4o-mini", now.Model)
	assert.Equal(t, ProviderGemini, now.Provider)
}

func TestSettingsConcurrentAccess(t *testing.T) {
	s := NewSettings(Config{})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetAPIKey("k")
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
	assert.Equal(t, "k", s.Snapshot().APIKey)
}

func TestScriptedClient(t *testing.T) {
	c := NewScriptedClient(func(req Request) (string, error) {
		if req.Context == "fail" {
			return "", &QuotaError{Provider: "mock", Message: "limit"}
		}
		return "echo:" + req.Context, nil
	})

	res, err := c.Generate(context.Background(), Request{Context: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", res.Text)

	_, err = c.Generate(context.Background(), Request{Context: "fail"})
	assert.True(t, IsQuota(err))
	assert.Len(t, c.Calls(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Generate(ctx, Request{})
	assert.True(t, IsTransport(err))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCannedResponse(t *testing.T) {
	tr := CannedResponse(Request{
		Instruction: "ROLE: You are a transliteration engine for the Common Turkic Alphabet (CTA).",
		Context:     "SOURCE_LANGUAGE: Turkish\n\nINPUT_TEXT:\nMerhaba dünya\n\nTASK: Transliterate",
	})
	assert.Contains(t, tr, `"output_text":"Merhaba dünya"`)

	risk := CannedResponse(Request{
		Instruction: "ROLE: You analyze phonetic ambiguity risks in text",
		Context:     "CTA_TEXT:\n\"qazaq\"\n\nDETECTED_NEW_LETTERS: q, x\n\nTASK:",
	})
	assert.Contains(t, risk, `"letter":"q"`)
	assert.Contains(t, risk, `"letter":"x"`)

	cog := CannedResponse(Request{
		Instruction: "ROLE: You align cognates across Turkic languages",
		Context:     "CANDIDATE WORDS:\n- tr: su (Turkish)\n- az: su (Azerbaijani)\n",
	})
	assert.Contains(t, cog, `"lang":"az"`)

	assert.Equal(t, "{}", CannedResponse(Request{Instruction: "unknown"}))
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, (&AuthenticationError{Provider: "openai", EnvVar: "OPENAI_API_KEY"}).Error(), "OPENAI_API_KEY")
	assert.Equal(t, "gemini: no API key configured", (&AuthenticationError{Provider: "gemini"}).Error())
	assert.Equal(t, "openai: service returned status 500: boom", (&TransportError{Provider: "openai", StatusCode: 500, Err: errors.New("boom")}).Error())
	assert.Equal(t, "openai: usage limit reached: limit", (&QuotaError{Provider: "openai", Message: "limit"}).Error())
}
