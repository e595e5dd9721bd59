package model

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// DefaultIDLength is the number of random characters after the prefix.
const DefaultIDLength = 6

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Kind identifies the entity an ID belongs to.
type Kind string

const (
	KindProject   Kind = "project"
	KindTask      Kind = "task"
	KindRecurring Kind = "recurring"
	KindOneOff    Kind = "oneoff"
	KindHabit     Kind = "habit"
	KindLink      Kind = "link"
	KindReading   Kind = "reading"
	KindSubtask   Kind = "subtask"
)

var kindPrefixes = map[Kind]string{
	KindProject:   "pj",
	KindTask:      "ts",
	KindRecurring: "rc",
	KindOneOff:    "oo",
	KindHabit:     "hb",
	KindLink:      "ln",
	KindReading:   "rd",
	KindSubtask:   "st",
}

// Prefix returns the ID prefix for the kind, or "it" for unknown kinds.
func (k Kind) Prefix() string {
	if p, ok := kindPrefixes[k]; ok {
		return p
	}
	return "it"
}

// GenerateID returns a new ID with the kind's prefix and DefaultIDLength
// random base36 characters, e.g. ts-a1b2c3.
func GenerateID(kind Kind) string {
	return GenerateIDN(kind, DefaultIDLength)
}

// GenerateIDN is GenerateID with an explicit random length.
// Lengths below 3 are raised to 3.
func GenerateIDN(kind Kind, n int) string {
	if n < 3 {
		n = 3
	}
	return kind.Prefix() + "-" + randomString(n)
}

// KindOf returns the kind encoded in an ID's prefix.
func KindOf(id string) (Kind, bool) {
	prefix, _, ok := strings.Cut(id, "-")
	if !ok {
		return "", false
	}
	for k, p := range kindPrefixes {
		if p == prefix {
			return k, true
		}
	}
	return "", false
}

// DerivedID returns a stable ID of the given kind built from another
// entity's ID, so re-deriving from the same source yields the same result.
// A recognised prefix on source is replaced; anything else is kept whole.
func DerivedID(kind Kind, source string) string {
	rest := source
	if _, ok := KindOf(source); ok {
		_, rest, _ = strings.Cut(source, "-")
	}
	return kind.Prefix() + "-" + rest
}

func randomString(n int) string {
	max := big.NewInt(int64(len(idAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = idAlphabet[idx.Int64()]
	}
	return string(b)
}
