package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
	overBlock   = "▓"
)

// RenderLoadBar renders workload against capacity like [████░░░░] 45%.
// Past 100% the bar fills completely and the overflow is marked with
// heavier blocks on a red bar.
func RenderLoadBar(utilization float64, over bool, width int) string {
	if utilization < 0 {
		utilization = 0
	}
	if width < 2 {
		width = 2
	}

	frac := min(utilization/100, 1)
	filled := int(frac * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	if over {
		bar = strings.Repeat(overBlock, width)
	}

	pctStr := fmt.Sprintf("%3.0f%%", utilization)
	return fmt.Sprintf("[%s] %s", LoadStyle(utilization, over).Render(bar), pctStr)
}

// RenderCompactBar renders a bar without brackets or percentage, scaled so
// that value/maxValue fills width. Used for the weekly workload chart.
func RenderCompactBar(value, maxValue, width int, over bool) string {
	if width < 1 {
		width = 1
	}
	filled := 0
	if maxValue > 0 && value > 0 {
		filled = min(value*width/maxValue, width)
		if filled == 0 {
			filled = 1
		}
	}
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(" ", width-filled)
	if over {
		return StyleRed.Render(bar)
	}
	return StyleBlue.Render(bar)
}
