// Package identity holds the account model and its persistence boundary.
//
// An identity is created once on registration and mutated only by external
// administrative action; the stores here expose create and lookup only.
package identity
