package services

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// Popularity blend constants.
const (
	// corpusMeanRating is the prior a title with few votes is pulled towards.
	corpusMeanRating = 6.7

	// votePrior is the vote count at which a title's own rating weighs half.
	votePrior = 12000.0

	// voteCeiling normalises the log-popularity term.
	voteCeiling = 2_000_000.0

	// recencyPivot is the year with zero recency tilt.
	recencyPivot = 2012.0

	// minBlendedScore keeps every blended score positive.
	minBlendedScore = 0.05
)

// PopularityRanker re-scores a relevance window so that well-known titles
// beat obscure exact-token matches. Ties are broken by identifier.
type PopularityRanker struct {
	now func() time.Time
}

// NewPopularityRanker creates a ranker using the wall clock for recency.
func NewPopularityRanker() *PopularityRanker {
	return &PopularityRanker{now: time.Now}
}

// Rerank rescores hits in place and reorders them by the blended score.
func (r *PopularityRanker) Rerank(hits []domain.TitleHit, text string) {
	needle := strings.ToLower(strings.TrimSpace(text))
	year := r.now().Year()

	for i := range hits {
		hits[i].Score = blendScore(hits[i].Score, &hits[i].Document, needle, year)
	}
	slices.SortStableFunc(hits, func(a, b domain.TitleHit) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), strings.Compare(a.Document.ID, b.Document.ID))
	})
}

// blendScore combines the text relevance score with title-match, quality,
// popularity and recency signals.
func blendScore(base float64, doc *domain.TitleDocument, needle string, currentYear int) float64 {
	textScore := math.Log1p(math.Max(base, 0))

	bonus := 0.0
	if needle != "" {
		var floor float64
		bonus, floor = titleMatchBonus(strings.ToLower(doc.PrimaryTitle), needle)
		textScore = math.Max(textScore, floor)
	}

	rating := 5.0
	if doc.AverageRating != nil {
		rating = *doc.AverageRating
	}
	votes := 0.0
	if doc.NumVotes != nil {
		votes = float64(*doc.NumVotes)
	}

	weighted := corpusMeanRating
	if votes > 0 {
		weighted = (votes/(votes+votePrior))*rating + (votePrior/(votes+votePrior))*corpusMeanRating
	}
	quality := weighted / 10 * 3

	popularity := 0.0
	if votes > 0 {
		popularity = math.Log1p(votes) / math.Log1p(voteCeiling) * 2.2
	}

	combined := 1 + quality + popularity + recencyTilt(doc, currentYear) + bonus
	combined *= coldStartFactor(votes)

	return textScore * math.Max(combined, minBlendedScore)
}

// titleMatchBonus rewards exact and prefix matches on the primary title and
// penalises noisy substring hits on short queries. The floor lifts the text
// score of exact matches.
func titleMatchBonus(title, needle string) (bonus, floor float64) {
	short := len([]rune(needle)) <= 3
	switch {
	case title == needle:
		if short {
			return 7.0, 4.5
		}
		return 6.0, 3.8
	case short && hasWord(title, needle):
		return 1.2, 0
	case strings.HasPrefix(title, needle):
		return 0.9, 0
	case !short && strings.Contains(title, needle):
		return 0.4, 0
	case short:
		return -0.8, 0
	default:
		return -0.3, 0
	}
}

func hasWord(haystack, word string) bool {
	for _, w := range strings.FieldsFunc(haystack, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if w == word {
			return true
		}
	}
	return false
}

// recencyTilt nudges recent titles up and old ones down. Running series
// count as current.
func recencyTilt(doc *domain.TitleDocument, currentYear int) float64 {
	var year int
	switch {
	case doc.EndYear == nil && isSeries(doc.TitleType):
		year = currentYear
	case doc.EndYear != nil:
		year = *doc.EndYear
	case doc.StartYear != nil:
		year = *doc.StartYear
	default:
		return 0
	}
	return math.Min(math.Max((float64(year)-recencyPivot)/90, -0.10), 0.15)
}

func isSeries(titleType string) bool {
	switch titleType {
	case "tvSeries", "tvMiniSeries", "tvEpisode":
		return true
	default:
		return false
	}
}

// coldStartFactor dampens titles with very few votes.
func coldStartFactor(votes float64) float64 {
	switch {
	case votes < 50:
		return 0.20
	case votes < 500:
		return 0.50
	case votes < 2000:
		return 0.80
	default:
		return 1.0
	}
}
