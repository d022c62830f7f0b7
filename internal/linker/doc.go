// Package linker turns compiled programs into callable evaluators.
//
// Program text is untrusted: it may come from a saved project file. Parse
// accepts only three instruction shapes, each matched by an anchored
// regular expression:
//
//	$N = kind(ref, ...)
//	$N = ref
//	return [ref, ...]
//
// where ref is $in, $in[k], $N or $N[k]. Anything else is rejected with
// UNSAFE_INSTRUCTION. Linked evaluators walk the instruction list against a
// snapshot of the registry; nothing is ever compiled to native code or
// interpreted as an expression.
package linker
