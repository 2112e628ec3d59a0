package encoder

import (
	"fmt"
	"strconv"
	"strings"
)

// formatNumber renders a float in the fixed, locale-free decimal
// representation the encoder's filter expression parser accepts.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// buildFilterComplex builds the two-stream filter_complex script fed to the
// encoder's standard input during Encode. It keeps only frames/samples
// whose timestamp falls within an audible interval, compresses the gaps out
// of the timeline, and rescales video to height 576 preserving aspect.
//
// A disjunction of between(t\,start\,end) terms selects audible samples,
// and gt(T,gap_start)*(gap_end-gap_start) terms summed across every silent
// gap before a given sample give the amount of time to subtract from its
// timestamp so the output has no gaps.
func buildFilterComplex(audible []Interval) (string, error) {
	if len(audible) == 0 {
		return "", fmt.Errorf("%w: empty audible list", ErrInvalidInput)
	}

	keepTerms := make([]string, 0, len(audible))
	for _, iv := range audible {
		keepTerms = append(keepTerms, fmt.Sprintf("between(t\\,%s\\,%s)", formatNumber(iv.Start), formatNumber(iv.End)))
	}
	keepExpr := strings.Join(keepTerms, "+")

	var shiftTerms []string
	for i := 1; i < len(audible); i++ {
		gapStart := audible[i-1].End
		gapEnd := audible[i].Start
		if gapEnd <= gapStart {
			continue
		}
		shiftTerms = append(shiftTerms, fmt.Sprintf("gt(T\\,%s)*(%s-%s)", formatNumber(gapStart), formatNumber(gapEnd), formatNumber(gapStart)))
	}
	shiftExpr := "0"
	if len(shiftTerms) > 0 {
		shiftExpr = strings.Join(shiftTerms, "+")
	}

	ptsExpr := fmt.Sprintf("PTS-STARTPTS-(%s)/TB", shiftExpr)

	videoFilter := fmt.Sprintf("select='%s',setpts='%s',scale='trunc(oh*a/2)*2:576'", keepExpr, ptsExpr)
	audioFilter := fmt.Sprintf("aselect='%s',asetpts='%s'", keepExpr, ptsExpr)

	script := fmt.Sprintf("[0:v]%s[video];[0:a]%s[audio]", videoFilter, audioFilter)
	return script, nil
}
