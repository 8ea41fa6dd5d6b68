// Package itemlist turns a collection of items into a sortable table view
// whose column visibility follows the measured width of the rendering surface.
//
// The package has no UI dependencies. The web server and the terminal UI both
// drive the same [Table] and only differ in how they paint a [View].
//
// # Pipeline
//
//  1. [Project] maps each [Item] to a flat [Row]; [Projector] memoizes the
//     result per collection so unrelated re-renders do not re-project.
//  2. [Columns] declares the eight columns in display order, each with an
//     optional cell rule, comparator and hide-below width.
//  3. [SortState.Toggle] cycles a column through ascending, descending and
//     unsorted; [Sort] applies the state with a stable sort on a copy.
//  4. [Visibility] hides every column whose threshold exceeds the measured
//     width. Before the first measurement nothing is hidden.
//  5. [Table.View] combines all of the above into headers and rows ready to
//     be drawn.
//
// # Selection
//
// Clicking a row reports the row's Type (for example "BUG-42") to the
// selection callback, never the internal numeric id.
//
// A Table is owned by a single event loop and is not safe for concurrent use.
package itemlist
