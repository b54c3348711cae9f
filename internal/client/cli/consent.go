package cli

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/client/services"
)

// getSimpleText is an indirection over GetSimpleText used by tests.
var getSimpleText = GetSimpleText

// TerminalConsent asks the user at the terminal to share their social
// profile. Without an interactive terminal every request is denied.
type TerminalConsent struct {
	reader *bufio.Reader
	out    io.Writer
	fd     int
}

func NewTerminalConsent(reader *bufio.Reader, out io.Writer, fd int) *TerminalConsent {
	return &TerminalConsent{reader: reader, out: out, fd: fd}
}

func (c *TerminalConsent) RequestConsent(ctx context.Context) (models.ConsentProfile, error) {
	if err := ctx.Err(); err != nil {
		return models.ConsentProfile{}, err
	}
	if !isTerminal(c.fd) {
		return models.ConsentProfile{}, services.ErrConsentDenied
	}

	answer, err := getSimpleText(c.reader, "Share your WeChat profile with healthkeeper? [y/N]", c.out)
	if err != nil {
		return models.ConsentProfile{}, err
	}
	if !accepted(answer) {
		return models.ConsentProfile{}, services.ErrConsentDenied
	}

	nick, err := getSimpleText(c.reader, "Nickname", c.out)
	if err != nil {
		return models.ConsentProfile{}, err
	}
	if nick == "" {
		return models.ConsentProfile{}, services.ErrConsentDenied
	}

	p := models.ConsentProfile{NickName: nick}
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Avatar URL (optional)", &p.AvatarURL},
		{"City (optional)", &p.City},
		{"Province (optional)", &p.Province},
	}
	for _, f := range fields {
		if *f.dst, err = getSimpleText(c.reader, f.prompt, c.out); err != nil {
			return models.ConsentProfile{}, err
		}
	}

	gender, err := getSimpleText(c.reader, "Gender: 1 male, 2 female, empty to skip", c.out)
	if err != nil {
		return models.ConsentProfile{}, err
	}
	p.GenderCode = genderCode(gender)
	return p, nil
}

func accepted(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

func genderCode(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 2 {
		return 0
	}
	return n
}
