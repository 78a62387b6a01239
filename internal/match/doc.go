// Package match ranks names by edit distance so that a misspelled
// translation kind or option can be answered with a suggestion.
package match
