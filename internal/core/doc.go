// Package core provides the business logic for task and assignee imports.
//
// This package holds all domain logic independent of any UI, transport or
// storage engine. Web handlers, the CLI and tests drive it through [Service]
// and a [Store] implementation.
//
// # Import Registry
//
// Import kinds are registered at init time using [Register]. Each
// [ImportDefinition] carries its columns, header policy, parser, template and
// bulk writer:
//
//	core.Register(core.ImportDefinition{
//	    Info:     core.ImportInfo{Kind: core.KindAssignees, Label: "Assignees"},
//	    Columns:  core.AssigneeColumns,
//	    Parse:    parseAssignees,
//	    Template: core.AssigneeTemplate,
//	    Write:    writeAssignees,
//	})
//
// # Pipeline
//
// An upload goes through four steps:
//
//  1. Decode: BOM stripped, invalid UTF-8 replaced, .xlsx flattened to lines
//  2. Resolve the header once; missing required columns reject the file
//  3. Validate rows; tasks skip bad rows silently, assignees report them
//  4. Write every valid row with a single bulk store call
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - DB001-DB008: store errors (duplicates, connectivity, timeouts)
//   - VAL001-VAL007: validation errors (missing columns, no valid rows)
//   - FILE001-FILE005: file errors (size, format, empty)
//   - IMP001-IMP004: import errors (unknown kind, busy, cancelled, timeout)
//
// Errors that match no pattern are shown verbatim after [Redact] removes
// credentials.
package core
