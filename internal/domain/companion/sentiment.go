package companion

import (
	"strings"
	"unicode"
)

var (
	positiveWords = wordSet("happy", "good", "great", "better", "calm", "grateful", "glad", "relaxed", "excited", "wonderful", "fine", "enjoyed")
	negativeWords = wordSet("sad", "lonely", "alone", "tired", "exhausted", "bad", "upset", "depressed", "frustrated", "angry", "confused", "forgetful", "awful")
	anxiousWords  = wordSet("worried", "worry", "anxious", "stress", "stressed", "nervous", "scared", "afraid", "panic", "overwhelmed")
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// DetectSentiment classifies a message with a keyword lexicon. Anxiety wins ties, negative
// beats positive only when it has more hits.
func DetectSentiment(message string) Sentiment {
	var pos, neg, anx int
	for _, word := range tokenize(message) {
		if _, ok := anxiousWords[word]; ok {
			anx++
		}
		if _, ok := negativeWords[word]; ok {
			neg++
		}
		if _, ok := positiveWords[word]; ok {
			pos++
		}
	}
	switch {
	case anx > 0 && anx >= neg && anx >= pos:
		return SentimentAnxious
	case neg > pos:
		return SentimentNegative
	case pos > neg:
		return SentimentPositive
	default:
		return SentimentNeutral
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}
