package health

import (
	"context"

	"github.com/jonwraymond/odoogate/token"
)

// probeCredentials is a fixed, obviously synthetic credential set used only
// to exercise the codec. It never reaches any upstream system.
var probeCredentials = token.Credentials{
	Endpoint: "https://probe.invalid",
	Database: "probe",
	Username: "probe",
	Password: "probe",
	Scope:    "*:r",
}

// CodecChecker proves the token codec can seal and open credentials with the
// configured process secret. A failure here means every caller-presented
// token would be rejected.
type CodecChecker struct {
	codec *token.Codec
}

// NewCodecChecker creates a checker over the given codec.
func NewCodecChecker(codec *token.Codec) *CodecChecker {
	return &CodecChecker{codec: codec}
}

// Name identifies the checker.
func (c *CodecChecker) Name() string { return "token_codec" }

// Check seals the probe credentials and opens them again.
func (c *CodecChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("check cancelled", ctx.Err())
	default:
	}

	sealed, err := c.codec.Encode(probeCredentials)
	if err != nil {
		return Unhealthy("encode failed", err)
	}

	opened, err := c.codec.Decode(sealed)
	if err != nil {
		return Unhealthy("decode failed", err)
	}
	if opened.Credentials != probeCredentials {
		return Unhealthy("round trip mismatch", ErrCheckFailed)
	}

	return Healthy("round trip ok").WithDetails(map[string]any{
		"token_length": len(sealed),
	})
}
