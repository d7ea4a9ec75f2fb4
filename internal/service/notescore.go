package service

// ScoreTranscript derives sentiment and deal-quality scores for a call
// transcript from its length. A deliberate proxy heuristic: longer calls
// signal engagement, and deal quality accrues slightly faster than
// sentiment (divisor 15 vs 20). Both scores cap at 100.
func ScoreTranscript(content string) (sentiment, dealQuality int) {
	sentiment = len(content) / 20
	if sentiment > 100 {
		sentiment = 100
	}
	dealQuality = len(content) / 15
	if dealQuality > 100 {
		dealQuality = 100
	}
	return sentiment, dealQuality
}
