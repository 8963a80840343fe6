// Package testdata reads parametrized test cases from CSV, TSV, XLSX, YAML
// and JSON files into a uniform []TestCase.
package testdata
