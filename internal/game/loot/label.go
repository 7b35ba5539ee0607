package loot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Checkbox and marker glyphs used in item rows.
const (
	markSelected   = "{{W|[þ]}}"
	markUnselected = "{{y|[ ]}}"
	markPool       = "{{c|[÷]}}"
	markPoolPicked = "{{W|[÷]}}"
)

// ItemLabel renders one popup row for item.
//
// Postcondition: selected and unselected rows differ; pools carry the
// liquid marker, bright when selected; the key shown matches sort.
func ItemLabel(selected bool, item InventoryItem, sort SortType) string {
	var b strings.Builder
	switch {
	case item.IsPool && selected:
		b.WriteString(markPoolPicked)
	case item.IsPool:
		b.WriteString(markPool)
	case selected:
		b.WriteString(markSelected)
	default:
		b.WriteString(markUnselected)
	}
	b.WriteByte(' ')
	b.WriteString(keyLabel(item, sort))
	b.WriteByte(' ')
	b.WriteString(item.Name)
	return b.String()
}

func keyLabel(item InventoryItem, sort SortType) string {
	if sort == SortWeight {
		return "{{w|" + formatWeight(item.Weight) + "#}}"
	}
	if item.IsPool {
		return "{{K|[--]}}"
	}
	if !item.Known {
		return "{{K|[??]}}"
	}
	ratio := item.ValueRatio()
	if math.IsInf(ratio, 1) {
		return "{{G|[∞ $/#]}}"
	}
	return fmt.Sprintf("{{G|[%.2f $/#]}}", ratio)
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

// SortLabel renders the sort control button text.
func SortLabel(sort SortType, hotkey string) string {
	return fmt.Sprintf("{{W|[%s]}} {{y|Sort: %s}}", hotkey, sort)
}

// PickupLabel renders the pickup-mode control button text.
func PickupLabel(pickup PickupType, hotkey string) string {
	return fmt.Sprintf("{{W|[%s]}} {{y|Pickup: %s}}", hotkey, pickup)
}

// ToggleAllLabel renders the select/deselect-all button text. allSelected
// switches the label to its deselect form.
func ToggleAllLabel(allSelected bool, hotkey string) string {
	prefix := "S"
	if allSelected {
		prefix = "Des"
	}
	return fmt.Sprintf("{{W|[%s]}} {{y|%select All}}", hotkey, prefix)
}

// IntroText renders the popup introduction including the running total of
// selected weight, truncated to whole pounds.
func IntroText(selectedWeight float64) string {
	return "Mark items here, then autoexplore to pick them up.\n" +
		"Selecting a liquid item (" + markPool + ") will auto-travel to that liquid.\n" +
		"Selected weight: {{w|" + strconv.Itoa(int(selectedWeight)) + "#}}\n\n"
}
