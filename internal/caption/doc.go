// Package caption defines the timed segment model shared by the transcript
// interpreter, the subtitle codec, and the session store, along with the
// identifier sources used to label segments.
package caption
