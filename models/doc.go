// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the grid.

# Request Types

Types sent to the stats service:

  - PageRequest: page, page_size (page_size is the raw input text)
  - PatchRequest: state, date, field, value

PatchRequest.Body returns the wire body of the update endpoint:

	{"<field>": "<value>"}

# Domain Types

  - Record: one row of stats keyed by field name, keeping the field order
    of the JSON object it was decoded from
  - Field: name/value pair used to build records

The first record's key order is the grid's column order, which is why
Record does not decode into a plain map.

# Response Types

  - GridSnapshot: page, page_size, generation, fetching, records
  - ErrorResponse: error, message

# Identifying Fields

	FieldState = "state"
	FieldDate  = "date"

IsIdentifying reports whether a field addresses the record. Identifying
fields render as plain text and are never patched.

# Display

DisplayValue renders editable cells. Absent, null, false, zero and empty
values all display as "0".
*/
package models
