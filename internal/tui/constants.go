package tui

import "time"

// UI Layout Constants

const (
	// Lines used around the table: header (2), tabs (1), footer (3)
	MainViewHeightOffset = 6

	// Inspect and confirm views: title (2) + footer (2)
	ModalOverheadLines = 4

	// Horizontal margin for modal content (border + padding)
	ModalWidthMargin = 4

	// Form field width
	InputWidth = 60

	// Minimum widths of the table columns
	ColumnWidthID      = 36
	ColumnWidthProject = 28
	ColumnWidthNarrow  = 9
	ColumnWidthOwner   = 18
)

const (
	toastTimeout  = 4 * time.Second
	statusTimeout = 3 * time.Second
)
