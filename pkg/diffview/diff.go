package diffview

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines shown around each hunk.
const DefaultContext = 3

type lineOp struct {
	op   byte // ' ', '-', '+'
	text string
}

// Unified compares two documents line by line and returns a unified diff
// with the given amount of context, labeled "Doc A" / "Doc B". Equal
// inputs produce an empty result.
func Unified(a, b string, context int) []string {
	if context < 0 {
		context = DefaultContext
	}

	ops := lineDiff(a, b)

	changed := false
	for _, op := range ops {
		if op.op != ' ' {
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}

	out := []string{"--- Doc A", "+++ Doc B"}
	for _, h := range hunks(ops, context) {
		out = append(out, h.header())
		for _, op := range h.ops {
			out = append(out, string(op.op)+op.text)
		}
	}
	return out
}

// lineDiff runs a line-mode diff and flattens it to per-line operations.
func lineDiff(a, b string) []lineOp {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var ops []lineOp
	for _, d := range diffs {
		var op byte
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = '-'
		case diffmatchpatch.DiffInsert:
			op = '+'
		default:
			op = ' '
		}
		text := strings.TrimSuffix(d.Text, "\n")
		for _, line := range strings.Split(text, "\n") {
			ops = append(ops, lineOp{op: op, text: line})
		}
	}
	return ops
}

type hunk struct {
	aStart, aLen int
	bStart, bLen int
	ops          []lineOp
}

func (h hunk) header() string {
	return fmt.Sprintf("@@ -%s +%s @@", hunkRange(h.aStart, h.aLen), hunkRange(h.bStart, h.bLen))
}

func hunkRange(start, length int) string {
	if length == 1 {
		return fmt.Sprintf("%d", start)
	}
	if length == 0 {
		// Unified format points at the line before the insertion.
		start--
	}
	return fmt.Sprintf("%d,%d", start, length)
}

// hunks groups change runs that fall within 2*context lines of each other
// and clips the surrounding context.
func hunks(ops []lineOp, context int) []hunk {
	// Per-op line counters for both sides, before the op is applied.
	aBefore := make([]int, len(ops)+1)
	bBefore := make([]int, len(ops)+1)
	for i, op := range ops {
		aBefore[i+1] = aBefore[i]
		bBefore[i+1] = bBefore[i]
		if op.op != '+' {
			aBefore[i+1]++
		}
		if op.op != '-' {
			bBefore[i+1]++
		}
	}

	var groups [][2]int // [start,end) op index ranges covering change runs
	for i := 0; i < len(ops); i++ {
		if ops[i].op == ' ' {
			continue
		}
		start := i
		end := i + 1
		for end < len(ops) {
			// Extend over the next change if the equal gap fits inside
			// the merged context window.
			next := end
			for next < len(ops) && ops[next].op == ' ' {
				next++
			}
			if next == len(ops) || next-end > 2*context {
				break
			}
			end = next + 1
		}
		for end < len(ops) && ops[end].op != ' ' {
			end++
		}
		groups = append(groups, [2]int{start, end})
		i = end
	}

	var result []hunk
	for _, g := range groups {
		start := g[0] - context
		if start < 0 {
			start = 0
		}
		end := g[1] + context
		if end > len(ops) {
			end = len(ops)
		}

		h := hunk{
			aStart: aBefore[start] + 1,
			bStart: bBefore[start] + 1,
			aLen:   aBefore[end] - aBefore[start],
			bLen:   bBefore[end] - bBefore[start],
			ops:    ops[start:end],
		}
		result = append(result, h)
	}
	return result
}
