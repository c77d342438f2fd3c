// Package totp computes time-based one-time codes from a stored seed.
package totp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// ErrUnsupported is returned for seed formats that must be resolved by the vault agent.
var ErrUnsupported = errors.New("unsupported totp seed")

var ErrEmptySeed = errors.New("empty totp seed")

type Code struct {
	Code      string
	Period    uint
	Remaining time.Duration
}

type params struct {
	secret string
	opts   totp.ValidateOpts
}

func parse(seed string) (params, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return params{}, ErrEmptySeed
	}
	p := params{opts: totp.ValidateOpts{Period: 30, Digits: otp.DigitsSix, Algorithm: otp.AlgorithmSHA1}}
	lower := strings.ToLower(seed)
	switch {
	case strings.HasPrefix(lower, "otpauth://"):
		key, err := otp.NewKeyFromURL(seed)
		if err != nil {
			return params{}, fmt.Errorf("parse otpauth uri: %w", err)
		}
		p.secret = key.Secret()
		if per := key.Period(); per > 0 {
			p.opts.Period = uint(per)
		}
		p.opts.Digits = key.Digits()
		if p.opts.Digits == 0 {
			p.opts.Digits = otp.DigitsSix
		}
		p.opts.Algorithm = key.Algorithm()
	case strings.HasPrefix(lower, "steam://"):
		return params{}, fmt.Errorf("%w: steam", ErrUnsupported)
	default:
		p.secret = seed
	}
	p.secret = strings.ToUpper(strings.ReplaceAll(p.secret, " ", ""))
	if p.secret == "" {
		return params{}, ErrEmptySeed
	}
	return p, nil
}

// Generate returns the code valid at now together with the seconds left in its window.
func Generate(seed string, now time.Time) (Code, error) {
	p, err := parse(seed)
	if err != nil {
		return Code{}, err
	}
	code, err := totp.GenerateCodeCustom(p.secret, now, p.opts)
	if err != nil {
		return Code{}, fmt.Errorf("generate totp: %w", err)
	}
	return Code{Code: code, Period: p.opts.Period, Remaining: Remaining(now, p.opts.Period)}, nil
}

// Remaining is the time left in the current period window.
func Remaining(now time.Time, period uint) time.Duration {
	if period == 0 {
		period = 30
	}
	elapsed := uint(now.Unix()) % period
	return time.Duration(period-elapsed) * time.Second
}
