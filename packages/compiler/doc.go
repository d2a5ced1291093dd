// Package compiler turns Handlebars templates with HTML markup into the
// JSON wire format read by a Glimmer-style runtime.
//
// This package only holds documentation; the entry points live in the src
// sub-package (package compiler).
//
// The wire format follows the runtime it targets and may change between
// releases. Do not persist compiled output across versions.
//
// Main sub-packages:
//
//   - src: Precompile and Compile, the project Compiler
//   - src/config: compiler options and the project configuration file
//   - src/expression_parser: the Handlebars mustache grammar
//   - src/ml_parser: the HTML tokenizer driven over content chunks
//   - src/template_parser: tree unification, whitespace control, plugins
//   - src/syntax: the document tree, builders, traversal and printer
//   - src/scope: block params, named arguments and block symbols
//   - src/template/pipeline: lowering to operations, phases, serialization
//   - src/wire_format: opcodes and serialized template types
//   - src/inspect: HTML report of a compiled template
//
// Pipeline:
//
//   - Parse the mustache grammar, then tokenize HTML in each content chunk
//   - Unify both into one document tree and normalize whitespace
//   - Run AST plugins
//   - Resolve every path against the scope chain
//   - Ingest the tree into per-block operation lists
//   - Run the phases: attribute namespaces, attribute ordering, symbols
//   - Reify the operations into wire-format statements
package compiler
