// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package grid holds the state of one paginated, editable view over the stats
service.

State changes go through Reduce, a pure function from (State, Action) to a
new State plus an optional Effect. Store owns a State, applies actions under
a lock and runs the effects: Fetch becomes a cancellable page read tagged
with a generation number, and Patch is handed to a Writer.

Only the response of the most recent read may replace the records. A read
that fails leaves the previous records on screen. Writes are fire-and-forget
and never change the local records.
*/
package grid
