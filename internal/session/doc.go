// Package session implements the survey session state machine.
//
// A Machine exclusively owns one Session and mutates it in response to
// presentation inputs (start, resume, answer, continue, back, ...). Every
// mutation is persisted through a Store before the call returns, so a reload
// resumes from the last committed state.
//
// # Views
//
//	intro ──start/resume──▶ question ──advance past last──▶ complete
//	  ▲                        │ ▲
//	  │                        └─┘ back / continue / acknowledge feedback
//	  └──────────── reset (from any view, discards all records)
//
// Questions with index < phaseSplitIndex (phase 1) insert a hindsight
// feedback step between continue and the next question. Phase membership is
// a pure function of index and catalog (see Phase).
//
// # Timing
//
// Response latency is measured with the monotonic clock from the first time
// a question is shown. When the in-process timer is unavailable (the record
// was reloaded from storage) latency falls back to the wall-clock distance
// between shownAt and answeredAt. Revisits never restart the timer.
//
// The catalog is shared read-only; the Machine never modifies it.
package session
