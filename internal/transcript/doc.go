// Package transcript turns the caption model's free-form reply into timed
// caption segments.
//
// Model output is not guaranteed to be clean JSON: it may be wrapped in
// commentary or code fences, or cut off mid-array. RecoverPayload isolates
// the array, ParseRecords decodes it, and Interpret converts timestamps and
// assigns identifiers. An empty reply, an unparseable payload, and an empty
// record list are reported as distinct errors.
package transcript
