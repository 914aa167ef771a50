package actor

import (
	"github.com/aviate-labs/agent-go/principal"

	"github.com/vango-dev/payment-frontend/internal/errors"
)

// Principal identifies a canister or a user.
type Principal = principal.Principal

// AnonymousPrincipal is the principal of unauthenticated callers.
var AnonymousPrincipal = Principal{Raw: []byte{0x04}}

// Decode parses the textual form of a principal.
// The text must be canonical: lowercase, dash-grouped, with a valid checksum.
func Decode(text string) (Principal, error) {
	if text == "" {
		return Principal{}, errors.New("E010").WithDetail("canister id is empty")
	}
	p, err := principal.Decode(text)
	if err != nil {
		return Principal{}, errors.New("E010").WithDetailf("%q", text).Wrap(err)
	}
	if p.String() != text {
		return Principal{}, errors.New("E010").WithDetailf("%q is not in canonical form (want %q)", text, p.String())
	}
	return p, nil
}

// MustDecode is like Decode but panics on error.
func MustDecode(text string) Principal {
	p, err := Decode(text)
	if err != nil {
		panic(err)
	}
	return p
}
