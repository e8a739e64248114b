// Package summarize condenses free text into a one-line summary and a short
// list of bullet points.
//
// The completion model is asked first. When it is unavailable, times out or
// answers with nothing, a local extractive summary is used instead, so
// Summarize only fails on invalid input.
package summarize
