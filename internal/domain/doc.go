// Package domain contains the core business entities of the task tracker:
// users and the tasks assigned to them. Entities know how to describe
// themselves as plain records for persistence and how to rebuild themselves
// from records produced by either storage format.
package domain
