// Package docstring parses Python docstrings written in the
// reStructuredText field-list convention into a structured [Record].
//
// # Recognized Fields
//
// Each line of a docstring is trimmed and matched against the following
// tags, in this priority order (the first match wins):
//
//	:param NAME: DESCRIPTION
//	:param NAME (TYPE): DESCRIPTION
//	:type NAME: TYPE
//	:rtype: TYPE
//	:return: DESCRIPTION
//	:note: TEXT
//
// Every tag requires a non-empty value. A line that matches no tag is a
// continuation of the section opened by the most recent tag, or of the
// free-text description when no tag has been seen yet. Continuations are
// joined with a single space.
//
// # Sections
//
// The parser tracks one "current" section:
//
//   - description: continuation lines extend [Record.Description].
//   - parameters: continuation lines extend the description of the
//     parameter that was introduced last (by first mention, so a later
//     :type tag for an earlier parameter does not move the target).
//   - return: continuation lines extend [Record.Return].
//   - rtype: continuation lines are dropped, since the return type is a
//     single value.
//   - notes: continuation lines extend the last entry of [Record.Notes].
//
// A continuation in the parameters section with no parameter to attach to is
// skipped. Dispatch never produces that state on its own, so it only guards
// against records built outside [Parse].
//
// # Parameter Types
//
// A parameter type can be given inline in its :param tag or with a separate
// :type tag. Whichever arrives last wins. A :type tag for a parameter that
// has not been declared creates it with an empty description.
//
// Redeclaring a parameter replaces its description in place but does not
// reset it. A type recorded earlier, by a :type tag or an inline type, is
// kept unless the new declaration carries its own inline type:
//
//	:type path: str
//	:param path: directory to scan   // path keeps type "str"
//
// # Example
//
//	rec := docstring.Parse(`Doubles a value.
//
//	:param x: the input value
//	:type x: int
//	:return: doubled value
//	:rtype: int`)
//
//	rec.Description      // "Doubles a value."
//	*rec.Params[0].Type  // "int"
//	*rec.Return          // "doubled value"
package docstring
