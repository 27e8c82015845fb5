package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannelToken_LengthAndAlphabet(t *testing.T) {
	req := require.New(t)

	for i := 0; i < 50; i++ {
		token := ChannelToken(10)
		req.Len(token, 10)
		for _, c := range token {
			req.Truef(strings.ContainsRune(tokenAlphabet, c),
				"token %q contains %q outside the alphabet", token, c)
		}
	}
}
