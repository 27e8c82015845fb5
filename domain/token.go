package domain

import "math/rand"

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ChannelToken draws n independent characters from the uppercase
// alphanumeric alphabet. There is no uniqueness check against existing
// channel names; a collision silently reuses the name.
func ChannelToken(n int) string {
	token := make([]byte, n)
	for i := range token {
		token[i] = tokenAlphabet[rand.Intn(len(tokenAlphabet))]
	}
	return string(token)
}
