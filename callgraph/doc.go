// Package callgraph builds static call graphs of Python files and renders
// them as DOT, Mermaid or Graphviz images.
//
// A graph covers one group of files. [Build] links calls between the
// functions and methods defined in the group, and [Renderer.Render] writes
// the result to a file whose extension selects the format.
package callgraph
