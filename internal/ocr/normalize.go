package ocr

import (
	"strings"
)

// PlateChars is the alphabet the recognizer is constrained to.
const PlateChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MinPlateLength is the shortest normalized text accepted as a plate.
const MinPlateLength = 4

// lookAlikes replaces letters OCR commonly reads in place of digits:
// O→0, I→1, Z→2, S→5.
var lookAlikes = strings.NewReplacer("O", "0", "I", "1", "Z", "2", "S", "5")

// Clean uppercases raw and keeps only characters in PlateChars.
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(raw) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Substitute applies the look-alike corrections to every occurrence.
// It is idempotent: none of the replacement digits is itself replaced.
func Substitute(text string) string {
	return lookAlikes.Replace(text)
}

// Normalizer turns raw OCR output into plate text.
type Normalizer struct {
	MinLength     int
	Substitutions bool
}

// DefaultNormalizer cleans, substitutes and requires MinPlateLength characters.
var DefaultNormalizer = Normalizer{MinLength: MinPlateLength, Substitutions: true}

// Normalize returns the plate text and whether it is long enough to be accepted.
func (n Normalizer) Normalize(raw string) (string, bool) {
	text := Clean(raw)
	if n.Substitutions {
		text = Substitute(text)
	}
	minLength := n.MinLength
	if minLength <= 0 {
		minLength = MinPlateLength
	}
	if len(text) < minLength {
		return "", false
	}
	return text, true
}
