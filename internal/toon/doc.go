// Package toon parses indentation-delimited toon text into CSV tables.
//
// Every line has one of three forms, with two spaces of indentation per
// nesting level:
//
//	users[2]{id,name}:   array header with declared row count and columns
//	settings:            object header
//	theme: dark          primitive field
//
// Each object and array header becomes one table named by its dotted path
// (users, settings, settings.colors). An object table has a single row of
// its primitive fields. An array table takes its columns from the header;
// rows come either from object elements nested under it or from primitives
// placed directly under it, where a repeated key starts the next row.
// Primitives outside any header form the table named by [RootPath].
//
// Parsing is a pure function of the input text and is safe for concurrent
// use on different inputs.
package toon
