// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Concurrency primitives for the dispatcher: a bounded lock-free MPMC
// queue and a resizable fixed-worker executor built on it. Submit blocks
// while the queue is saturated, so accepted operations are never dropped.
package concurrency
