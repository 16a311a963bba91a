// Package distribution implements the auto-update path around an opened
// patternset.Dataset: a Source fetches a candidate Pattern file from a
// remote bucket, a Lease keeps a fleet of processes sharing that bucket
// from stampeding the same download, and a Distributor opens the fetched
// file as a brand-new Dataset and atomically swaps it in for callers of
// Current.
//
// None of this mutates an already-open Dataset or the Pattern byte
// format; a refresh is always fetch-then-Open-then-swap through the same
// entry points a direct caller would use.
package distribution
