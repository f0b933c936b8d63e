// Package kitchen holds ChefBot's static kitchen data: the fridge inventory, a small recipe book,
// per-ingredient nutrition facts, the restaurant menu and a restricted price calculator.
//
// Everything here is a pure lookup. The tool registry in package toolchain exposes these
// functions to the model; nothing in this package knows about models or messages.
package kitchen
