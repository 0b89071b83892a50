// Package utils provides loose type conversions shared by the packages that
// handle untyped input: scraped JSON values, query strings and flags.
package utils
