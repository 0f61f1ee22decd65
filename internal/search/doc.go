// Package search implements the search engine: it splits the candidate
// domain [1, DomainMax) into windows, hands each window to the range scanner
// and collects matches until the quota is met or the domain runs out.
//
// # Windows
//
// Windows hold StepSize candidates. By default the next window starts
// StepSize+1 after the previous one, so one candidate between windows is
// never scanned; this keeps results identical to earlier releases. Set
// Contiguous to scan every candidate.
//
// # Dispatch modes
//
//	sequential: Workers == 1. One window at a time; results in candidate order.
//	ordered:    Workers > 1, Ordered. Windows scanned in waves of Workers and
//	            committed in window order; results identical to sequential.
//	unordered:  Workers > 1, !Ordered. Up to Workers scans in flight; results
//	            in completion order.
//
// # Termination
//
// A search stops dispatching once the result set holds Quota matches (it is
// Satisfied) or the planner has no windows left (it is Exhausted). Exhaustion
// is reported on the Result, not as an error. Matches produced by scans still
// in flight after the quota is reached are discarded, so a result never holds
// more than Quota matches.
package search
