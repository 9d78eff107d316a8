// Package bench runs every planning strategy against the same path query
// and ranks the outcomes. Ranking is by lowest path cost, then by lowest
// search time; failed strategies never rank. The package also renders the
// fixed-width comparison table used by the CLI and the experiment runner.
package bench
