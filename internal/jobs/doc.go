// Package jobs provides an in-memory background job runner with a bounded
// queue and a fixed worker pool. It is used for work that must not block
// request handling, such as sending email after registration.
package jobs
