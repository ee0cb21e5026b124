// Package signature builds and compares content signatures.
//
// A leaf signature describes one article: its annotations indexed by
// predicate and the frequency profile of its non-stopword vocabulary. Merging
// two or more signatures keeps only what every input shares and scores the
// overlap in [0, ∞).
//
// Signatures are immutable once built. A merge produces a new Signature whose
// Sources are its inputs, so a merged signature is a tree whose leaves are the
// contributing articles.
package signature
