package dedup

import (
	"fmt"
	"strings"

	"github.com/bkyoung/comment-dedup/internal/domain"
)

// reasonLabels maps each reason to its report label. The literal strings
// are a compatibility surface consumed by downstream report rendering;
// do not reword them.
var reasonLabels = map[domain.Reason]string{
	domain.ReasonExactMatch:       "完全一致",
	domain.ReasonResolvedIssue:    "解決済み",
	domain.ReasonAcknowledged:     "確認済み",
	domain.ReasonRecentlyReported: "最近報告済み",
	domain.ReasonSamePattern:      "同一パターン",
	domain.ReasonHighSimilarity:   "高類似度",
}

// FormatSummary renders a deduplication result as the fixed human-readable
// report: a header, the input/original/duplicate counts with a one-decimal
// percentage, and, when duplicates exist, a per-reason breakdown in
// priority order with zero-count reasons omitted.
func FormatSummary(result Result) string {
	stats := result.Stats

	var b strings.Builder
	b.WriteString("重複排除結果:\n")
	fmt.Fprintf(&b, "入力: %d件\n", stats.TotalInput)
	fmt.Fprintf(&b, "オリジナル: %d件\n", stats.OriginalCount)
	fmt.Fprintf(&b, "重複: %d件 (%.1f%%)", stats.DuplicateCount, stats.DuplicateRate*100)

	if stats.DuplicateCount > 0 {
		b.WriteString("\n内訳:")
		for _, reason := range domain.AllReasons() {
			count := stats.ByReason[reason]
			if count == 0 {
				continue
			}
			fmt.Fprintf(&b, "\n  %s: %d件", reasonLabels[reason], count)
		}
	}

	return b.String()
}
