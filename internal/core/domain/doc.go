// Package domain contains the core business types for the TRA travel
// assistant: station records and candidates, parsed queries, timetable
// rows and search results. Types here depend only on the standard
// library and perform no I/O.
package domain
