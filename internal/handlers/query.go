package handlers

import (
	"net/url"
	"strings"

	"tnoodle-scrambles/internal/request"
)

// seedParam is the query key reserved for the batch seed.
const seedParam = "seed"

// parseRoundsQuery splits a raw query into rounds in the order they appear.
// Titles and requests are left percent-encoded for the resolver to decode.
// A repeated title keeps its first position and takes the last value.
func parseRoundsQuery(rawQuery string) ([]request.RawRound, *string, error) {
	var (
		rounds []request.RawRound
		index  = make(map[string]int)
		seed   *string
	)

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")

		if isSeedKey(key) {
			decoded, err := url.QueryUnescape(value)
			if err != nil {
				return nil, nil, err
			}
			seed = request.Seed(decoded)
			continue
		}

		if i, ok := index[key]; ok {
			rounds[i].Request = value
			continue
		}
		index[key] = len(rounds)
		rounds = append(rounds, request.RawRound{Title: key, Request: value})
	}
	return rounds, seed, nil
}

// isSeedKey matches the seed key in any percent-encoding, e.g. se%65d.
func isSeedKey(key string) bool {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return key == seedParam
	}
	return decoded == seedParam
}
