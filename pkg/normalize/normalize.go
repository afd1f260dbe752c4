// Package normalize reduces release and folder names to comparable titles.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var noiseTokens = []string{
	// resolution
	`\d{3,4}[pi]`, `4k`, `uhd`, `8k`,
	// dynamic range
	`hdr10\+?`, `hdr10plus`, `hdr`, `dv`, `dovi`, `hlg`, `sdr`,
	// source
	`blu-?ray`, `bdrip`, `brrip`, `remux`, `web-?dl`, `web-?rip`, `web`, `hdtv`, `pdtv`, `dvdrip`, `dvd`, `hdrip`,
	// streaming services
	`amzn`, `nf`, `dsnp`, `hmax`, `hulu`, `atvp`, `pcok`,
	// codecs
	`x26[456]`, `h\.?26[456]`, `hevc`, `avc`, `av1`, `xvid`, `divx`, `10bit`, `8bit`,
	// audio
	`aac\d?`, `ac3`, `eac3`, `ddp?\d?`, `dts(?:-hd)?`, `truehd`, `atmos`, `flac`,
	// release tags
	`proper`, `repack`, `internal`, `limited`, `unrated`, `extended`, `remastered`, `uncut`,
	// language
	`multi`, `dual`, `subs?`, `subbed`, `dubbed`, `eng`, `english`, `ita`, `fre`, `french`, `ger`, `german`, `spa`, `spanish`,
	// season packaging
	`complete`, `season\s*\d*`, `seasons`, `s\d{1,2}(?:e\d{1,3})*`, `e\d{1,3}`,
}

var (
	noiseRegex     = regexp.MustCompile(`(?i)\b(?:` + strings.Join(noiseTokens, `|`) + `)\b`)
	bracketGroups  = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\{[^}]*\}`)
	yearToken      = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	standaloneYear = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:\D|$)`)
	apostrophes    = regexp.MustCompile(`['’‘` + "`" + `]`)
	punctuation    = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	spaces         = regexp.MustCompile(`\s+`)
)

// Title lowercases s and strips bracketed groups, release noise tokens and
// years so that release names and folder names of one show compare equal.
func Title(s string) string {
	s = foldAccents(s)
	s = bracketGroups.ReplaceAllString(s, " ")
	s = apostrophes.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "_", " ")
	s = noiseRegex.ReplaceAllString(s, " ")
	s = punctuation.ReplaceAllString(s, " ")
	s = yearToken.ReplaceAllString(s, " ")
	s = spaces.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// Similarity is the number of tokens of a present in b divided by the larger
// of the two token set sizes.
func Similarity(a, b string) float64 {
	left := tokenSet(a)
	right := tokenSet(b)

	denominator := max(len(left), len(right))
	if denominator == 0 {
		return 0
	}

	found := 0
	for t := range left {
		if _, ok := right[t]; ok {
			found++
		}
	}

	return float64(found) / float64(denominator)
}

// Year returns the first standalone 19xx or 20xx number in s.
func Year(s string) (int32, bool) {
	m := standaloneYear.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	y, err := strconv.ParseInt(m[1], 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(y), true
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		set[t] = struct{}{}
	}
	return set
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
