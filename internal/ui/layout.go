package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the width below which the detail pane is
	// stacked under the list instead of beside it.
	LayoutCompactWidth = 100

	// LayoutAgeWidth is the minimum list width that shows the age column.
	LayoutAgeWidth = 50
)

// Timing constants.
const (
	// DefaultUIInterval is how often the header re-reads the store for the
	// unread count.
	DefaultUIInterval = time.Second

	// flashDuration is how long a status message stays in the footer.
	flashDuration = 4 * time.Second
)

// chromeHeight is the rows taken by the header, the footer and pane borders.
const chromeHeight = 4
