// Package customers manages a shop's customer records.
//
// Every store method takes the owning account id as its first argument
// and scopes the SQL to it. A customer that belongs to another account is
// indistinguishable from one that does not exist.
package customers
