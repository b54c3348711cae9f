package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubTerminal(t *testing.T, interactive bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(int) bool { return interactive }
	t.Cleanup(func() { isTerminal = orig })
}

func stubAnswers(t *testing.T, answers ...string) *[]string {
	t.Helper()
	orig := getSimpleText
	var prompts []string
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		prompts = append(prompts, prompt)
		if len(answers) == 0 {
			return "", io.EOF
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	t.Cleanup(func() { getSimpleText = orig })
	return &prompts
}

func TestTerminalConsent_Granted(t *testing.T) {
	stubTerminal(t, true)
	stubAnswers(t, "y", "小王", "https://a/b.png", "成都", "四川", "2")

	c := NewTerminalConsent(nil, &bytes.Buffer{}, 0)
	p, err := c.RequestConsent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ConsentProfile{
		NickName:   "小王",
		AvatarURL:  "https://a/b.png",
		City:       "成都",
		Province:   "四川",
		GenderCode: 2,
	}, p)
}

func TestTerminalConsent_Denied(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
	}{
		{"declined", []string{"n"}},
		{"empty answer", []string{""}},
		{"no nickname", []string{"yes", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubTerminal(t, true)
			stubAnswers(t, tt.answers...)

			_, err := NewTerminalConsent(nil, &bytes.Buffer{}, 0).RequestConsent(context.Background())
			assert.ErrorIs(t, err, services.ErrConsentDenied)
		})
	}
}

func TestTerminalConsent_NonInteractive(t *testing.T) {
	stubTerminal(t, false)
	prompts := stubAnswers(t, "y", "小王")

	_, err := NewTerminalConsent(nil, &bytes.Buffer{}, 0).RequestConsent(context.Background())
	assert.ErrorIs(t, err, services.ErrConsentDenied)
	assert.Empty(t, *prompts)
}

func TestTerminalConsent_InputClosed(t *testing.T) {
	stubTerminal(t, true)
	stubAnswers(t, "y")

	_, err := NewTerminalConsent(nil, &bytes.Buffer{}, 0).RequestConsent(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestTerminalConsent_CancelledContext(t *testing.T) {
	stubTerminal(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTerminalConsent(nil, &bytes.Buffer{}, 0).RequestConsent(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenderCode(t *testing.T) {
	assert.Equal(t, 1, genderCode("1"))
	assert.Equal(t, 2, genderCode("2"))
	assert.Equal(t, 0, genderCode(""))
	assert.Equal(t, 0, genderCode("7"))
	assert.Equal(t, 0, genderCode("male"))
}
