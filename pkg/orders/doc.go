// Package orders manages stitching orders.
//
// Orders reference customers, and both rows carry the owning account id.
// Creation runs in a transaction that first proves the referenced
// customer belongs to the same account; an order can never point at
// another tenant's customer, regardless of what id the client submits.
package orders
