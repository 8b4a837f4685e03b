// Package pysource finds documented declarations in Python source code.
//
// [Scanner.Scan] parses a file with tree-sitter and returns its module,
// classes, methods and functions together with their docstrings, cleaned
// the way Python's inspect.cleandoc does. [Decode] converts source bytes in
// legacy encodings to UTF-8 before scanning.
package pysource
