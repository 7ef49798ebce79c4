// Package batch runs independent frequency extractions over many light
// curves on a bounded worker pool.
//
// Every target gets its own run id and its own extraction state. A failing
// target is recorded and does not stop the others.
package batch
