// Package billing holds invoices and the payments made against them.
//
// An invoice's status is never written directly: every payment added,
// amended or removed reconciles the invoice, recomputing the paid total,
// the exact outstanding balance and the derived status.
package billing
