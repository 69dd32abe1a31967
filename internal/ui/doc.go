// Package ui is fediscope's Bubble Tea interface.
//
// The screen has a one-line header (page kind, title, instance, resolver
// source, unread count), a list of the current page's items, a detail pane
// for the selected item and a footer with messages or the command prompt.
// Wide terminals show list and detail side by side; below
// LayoutCompactWidth they are stacked.
//
// All network work goes through the Backend, run inside tea.Cmds so the
// event loop never blocks. The Backend records page loads in the shared
// state.Store; the model re-reads the store once per DefaultUIInterval to
// pick up the poller's unread count.
//
// Keys are defined in keys.go and listed by the help overlay (?). The
// theme (T) changes only for the running session.
package ui
