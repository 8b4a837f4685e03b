// Package document renders parsed docstrings into one Markdown document per
// source file.
//
// A [Document] holds a file name, its documented entities in source order
// and an optional trailer. [Renderer.Render] produces the Markdown text:
//
//	# File calc.py
//
//	### Function: double
//
//	Description: Not specified
//
//	Parameters:
//
//	- **x** (int): the input value
//
//	Returns: doubled value
//
//	Return type: int
//
// Classes are headed by their simple name, methods and functions by their
// qualified name. Module docstrings are emitted as plain paragraphs. Missing
// descriptions and parameter types are replaced with the placeholders from
// the renderer's [Labels], so rendering never fails.
//
// [Encode] writes a document as Markdown, JSON or YAML, and [Schema]
// describes the JSON and YAML forms.
package document
